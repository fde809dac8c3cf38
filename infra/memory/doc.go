// Package memory provides the typed object pool used as the node
// allocator of package treemap. It keeps a live count so callers can
// verify that every allocated node was handed back.
package memory
