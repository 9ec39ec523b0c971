package graph

import (
	"fmt"
	"sort"
)

// SceneGraph is what one script evaluation builds: solids, named with
// defsolid or anonymous, and the grid requests rooted over them. Evaluation
// never mutates a graph it has returned.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
}

// New creates an empty SceneGraph.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Children returns the child nodes of the given node, skipping dangling IDs.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// GridRequests returns the grid request roots in root order.
func (g *SceneGraph) GridRequests() []*Node {
	var out []*Node
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Kind == NodeGrid {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits n and its descendants depth first, each node once, stopping
// early when visit returns false. Dangling children are skipped.
func (g *SceneGraph) Walk(n *Node, visit func(*Node) bool) {
	seen := make(map[NodeID]bool)
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if seen[n.ID] {
			return true
		}
		seen[n.ID] = true
		if !visit(n) {
			return false
		}
		for _, c := range g.Children(n) {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(n)
}

// Solids returns the names given with defsolid, sorted.
func (g *SceneGraph) Solids() []string {
	var names []string
	for name, id := range g.NameIndex {
		if n := g.Nodes[id]; n != nil && n.Kind != NodeGrid {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}
