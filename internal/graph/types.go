package graph

import "sync"

// Graph is a directed acyclic graph of resource identifiers.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	// order records insertion order so traversals are deterministic.
	order []string
}

type node struct {
	id    string
	index int
	// deps are the nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents are the nodes that depend on this node (successors).
	dependents map[string]*node
}
