package document

import (
	"strconv"
	"strings"
)

var keyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `[`, `\[`, `]`, `\]`)

// JoinKey returns the path of the member key under parent. The root path is
// empty, so top-level members have no leading dot. Separator characters in
// the key are backslash-escaped to keep paths unique.
func JoinKey(parent, key string) string {
	escaped := keyEscaper.Replace(key)
	if parent == "" {
		return escaped
	}
	return parent + "." + escaped
}

// JoinIndex returns the path of element i under parent
func JoinIndex(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// Leaf is a string node together with its path
type Leaf struct {
	Path string
	Text string
}

// Leaves returns every string leaf of the tree in document order
func Leaves(root *Node) []Leaf {
	var leaves []Leaf
	var visit func(n *Node, path string)
	visit = func(n *Node, path string) {
		if n == nil {
			return
		}
		switch n.Kind {
		case String:
			leaves = append(leaves, Leaf{Path: path, Text: n.Str})
		case Array:
			for i, item := range n.Items {
				visit(item, JoinIndex(path, i))
			}
		case Object:
			for _, m := range n.Members {
				visit(m.Value, JoinKey(path, m.Key))
			}
		}
	}
	visit(root, "")
	return leaves
}

// LeafPaths returns the set of string leaf paths of the tree
func LeafPaths(root *Node) map[string]struct{} {
	leaves := Leaves(root)
	paths := make(map[string]struct{}, len(leaves))
	for _, l := range leaves {
		paths[l.Path] = struct{}{}
	}
	return paths
}
