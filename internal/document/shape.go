package document

import "fmt"

// SameShape reports whether a and b have the same node kind at every path,
// the same member keys in the same order, and the same array lengths.
// Scalar values are not compared.
func SameShape(a, b *Node) bool {
	return ShapeDiff(a, b) == nil
}

// ShapeDiff returns an error describing the first structural difference
// between a and b, or nil when they have the same shape
func ShapeDiff(a, b *Node) error {
	return shapeDiff(a, b, "")
}

func shapeDiff(a, b *Node, path string) error {
	if a == nil || b == nil {
		if a == b {
			return nil
		}
		return fmt.Errorf("%s: missing node", displayPath(path))
	}
	if a.Kind != b.Kind {
		return fmt.Errorf("%s: %s vs %s", displayPath(path), a.Kind, b.Kind)
	}

	switch a.Kind {
	case Array:
		if len(a.Items) != len(b.Items) {
			return fmt.Errorf("%s: array length %d vs %d", displayPath(path), len(a.Items), len(b.Items))
		}
		for i := range a.Items {
			if err := shapeDiff(a.Items[i], b.Items[i], JoinIndex(path, i)); err != nil {
				return err
			}
		}
	case Object:
		if len(a.Members) != len(b.Members) {
			return fmt.Errorf("%s: %d members vs %d", displayPath(path), len(a.Members), len(b.Members))
		}
		for i := range a.Members {
			if a.Members[i].Key != b.Members[i].Key {
				return fmt.Errorf("%s: key %q vs %q", displayPath(path), a.Members[i].Key, b.Members[i].Key)
			}
			if err := shapeDiff(a.Members[i].Value, b.Members[i].Value, JoinKey(path, a.Members[i].Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
