package walker

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/snonux/telephone/internal/document"
	"codeberg.org/snonux/telephone/internal/queue"
)

// Walker translates every string leaf of a document
type Walker struct {
	leaf *LeafMachine
	opts queue.Options
}

// New creates a walker that schedules each object and array level with opts
// and hands string leaves to leaf
func New(leaf *LeafMachine, opts queue.Options) *Walker {
	return &Walker{leaf: leaf, opts: opts}
}

// outcome carries a child's result through the pool. Tasks never fail so
// the pool keeps every partially translated child.
type outcome struct {
	node *document.Node
	err  error
}

// Walk returns a translated copy of node, which lives at path. The copy
// always has the shape of node: children the pool never reached are cloned
// unchanged. The error is ErrInterrupted (possibly joined with other
// errors) when cancellation cut the walk short.
func (w *Walker) Walk(ctx context.Context, node *document.Node, path string) (*document.Node, error) {
	switch node.Kind {
	case document.String:
		text, err := w.leaf.Translate(ctx, path, node.Str)
		return document.NewString(text), err

	case document.Object:
		results, err := queue.Run(ctx, node.Members, func(ctx context.Context, m document.Member) (outcome, error) {
			n, err := w.Walk(ctx, m.Value, document.JoinKey(path, m.Key))
			return outcome{n, err}, nil
		}, w.opts)

		members := make([]document.Member, len(node.Members))
		errs := []error{err}
		for i, m := range node.Members {
			members[i] = document.Member{Key: m.Key, Value: pick(results[i], m.Value, &errs)}
		}
		return document.NewObject(members...), combine(errs)

	case document.Array:
		indices := make([]int, len(node.Items))
		for i := range indices {
			indices[i] = i
		}
		results, err := queue.Run(ctx, indices, func(ctx context.Context, i int) (outcome, error) {
			n, err := w.Walk(ctx, node.Items[i], document.JoinIndex(path, i))
			return outcome{n, err}, nil
		}, w.opts)

		items := make([]*document.Node, len(node.Items))
		errs := []error{err}
		for i, item := range node.Items {
			items[i] = pick(results[i], item, &errs)
		}
		return document.NewArray(items...), combine(errs)

	case document.Null, document.Bool, document.Number:
		return node.Clone(), nil

	default:
		panic(fmt.Sprintf("walker: unsupported node kind %v at %q", node.Kind, path))
	}
}

// pick returns the translated child, or a clone of the original when the
// pool never ran it
func pick(o outcome, original *document.Node, errs *[]error) *document.Node {
	if o.node == nil {
		return original.Clone()
	}
	*errs = append(*errs, o.err)
	return o.node
}

// combine folds child errors, mapping pool cancellation to ErrInterrupted
func combine(errs []error) error {
	interrupted := false
	var rest []error

	var visit func(err error)
	visit = func(err error) {
		switch {
		case err == nil:
		case err == ErrInterrupted, errors.Is(err, queue.ErrCancelled):
			interrupted = true
		default:
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, e := range joined.Unwrap() {
					visit(e)
				}
				return
			}
			rest = append(rest, err)
		}
	}
	for _, err := range errs {
		visit(err)
	}

	switch {
	case !interrupted:
		return errors.Join(rest...)
	case len(rest) == 0:
		return ErrInterrupted
	default:
		return errors.Join(append([]error{ErrInterrupted}, rest...)...)
	}
}
