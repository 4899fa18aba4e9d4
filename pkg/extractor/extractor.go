// Package extractor picks the node a run compiles. A run has exactly one
// root: a single requested node that is a top-level FRAME. Anything else
// (nothing requested, several nodes, a group or a component) is not an
// error in the usual sense; callers treat it as "nothing to do".
package extractor

import (
	"github.com/cockroachdb/errors"

	"github.com/kataras/figma-happyx/pkg/figma"
)

// ErrUnselectable is the mark of every selection mismatch. Test with errors.Is.
var ErrUnselectable = errors.New("selection cannot be compiled")

var (
	ErrNoSelection       = errors.Mark(errors.New("no node selected"), ErrUnselectable)
	ErrMultipleSelection = errors.Mark(errors.New("more than one node selected"), ErrUnselectable)
	ErrNotFrame          = errors.Mark(errors.New("selected node is not a frame"), ErrUnselectable)
	ErrNodeMissing       = errors.Mark(errors.New("selected node not found"), ErrUnselectable)
)

// Select returns the node to compile from a /files/:key/nodes response.
// With no explicit IDs the response must hold exactly one node.
func Select(resp *figma.NodesResponse, nodeIDs []string) (*figma.Node, error) {
	if len(nodeIDs) == 0 {
		for id := range resp.Nodes {
			nodeIDs = append(nodeIDs, id)
		}
	}
	id, err := single(nodeIDs)
	if err != nil {
		return nil, err
	}

	data, ok := resp.Nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNodeMissing, "node %s", id)
	}
	return frame(&data.Document)
}

// SelectInFile is Select for a whole-file response: the requested node is
// searched for in the document tree.
func SelectInFile(file *figma.FileResponse, nodeIDs []string) (*figma.Node, error) {
	id, err := single(nodeIDs)
	if err != nil {
		return nil, err
	}
	n := FindNode(&file.Document, id)
	if n == nil {
		return nil, errors.Wrapf(ErrNodeMissing, "node %s", id)
	}
	return frame(n)
}

func single(nodeIDs []string) (string, error) {
	switch len(nodeIDs) {
	case 0:
		return "", ErrNoSelection
	case 1:
		return nodeIDs[0], nil
	default:
		return "", errors.Wrapf(ErrMultipleSelection, "%d nodes", len(nodeIDs))
	}
}

func frame(n *figma.Node) (*figma.Node, error) {
	if n.Type != figma.TypeFrame {
		return nil, errors.Wrapf(ErrNotFrame, "%q is a %s", n.Name, n.Type)
	}
	return n, nil
}

// FindNode returns the node with the given ID in root's subtree, or nil.
func FindNode(root *figma.Node, id string) *figma.Node {
	if root.ID == id {
		return root
	}
	for i := range root.Children {
		if n := FindNode(&root.Children[i], id); n != nil {
			return n
		}
	}
	return nil
}
