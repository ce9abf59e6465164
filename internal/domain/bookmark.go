package domain

// Node is one entry in the hierarchical bookmark store. A node with a URL is
// a leaf bookmark; a node without one is a folder.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	ParentID string  `json:"parent_id,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsFolder reports whether the node can contain children.
func (n *Node) IsFolder() bool {
	return n.URL == ""
}

// FindChildFolder returns the direct child folder with the given title, or
// nil when none exists.
func (n *Node) FindChildFolder(title string) *Node {
	for _, c := range n.Children {
		if c.IsFolder() && c.Title == title {
			return c
		}
	}
	return nil
}
