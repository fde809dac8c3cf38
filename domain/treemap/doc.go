// Package treemap is the ordered associative container built on the
// red-black engine in package rbtree. It translates key-oriented calls
// (indexing, checked lookup, counting, erasure, bounds queries) onto the
// engine and owns the node pool the engine allocates from.
//
// A Map is not safe for concurrent use.
package treemap
