package models

// WorkflowGraph is the uploaded workflow definition. The core treats it as
// read-only input.
type WorkflowGraph struct {
	Name        string         `json:"name"`
	Nodes       []Node         `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Settings    map[string]any `json:"settings,omitempty"`
	StaticData  any            `json:"staticData,omitempty"`
}

// NodeByKey returns the node whose Key is key, or nil.
func (g *WorkflowGraph) NodeByKey(key string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Key() == key {
			return &g.Nodes[i]
		}
	}

	return nil
}

// NodeTypes returns the distinct node types in node order.
func (g *WorkflowGraph) NodeTypes() []string {
	seen := make(map[string]struct{}, len(g.Nodes))
	types := make([]string, 0, len(g.Nodes))

	for _, node := range g.Nodes {
		if node.Type == "" {
			continue
		}

		if _, ok := seen[node.Type]; ok {
			continue
		}

		seen[node.Type] = struct{}{}
		types = append(types, node.Type)
	}

	return types
}
