// Package rbtree implements the red-black tree engine behind the ordered
// map in package treemap. Every node is owned by its tree; a single black
// sentinel per tree stands in for every absent child and for the parent of
// the root.
//
// The engine is single-writer and performs no locking. Callers that share a
// tree between goroutines must serialize access themselves.
package rbtree
