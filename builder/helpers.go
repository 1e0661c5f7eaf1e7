// Package builder provides ready-made graph shapes on top of
// statekeep.GraphBuilder: self loops, chains, rings, diamonds and the
// prototype component used in demos and benchmarks.
package builder

import (
	"fmt"

	"github.com/comalice/statekeep"
)

// Option configures an entity as it is declared.
type Option func(*statekeep.EntityBuilder)

// WithInt sets an integer field.
func WithInt(field string, n int64) Option {
	return func(eb *statekeep.EntityBuilder) { eb.Int(field, n) }
}

// WithText sets a text field.
func WithText(field, s string) Option {
	return func(eb *statekeep.EntityBuilder) { eb.Text(field, s) }
}

// WithShared interns fields into a shared field.
func WithShared(field string, fields ...statekeep.Scalar) Option {
	return func(eb *statekeep.EntityBuilder) { eb.Shared(field, fields...) }
}

// New declares name on b and applies opts.
func New(b *statekeep.GraphBuilder, name string, opts ...Option) *statekeep.EntityBuilder {
	eb := b.Entity(name)
	for _, opt := range opts {
		opt(eb)
	}
	return eb
}

// SelfLoop declares one entity whose "self" field references itself.
func SelfLoop(b *statekeep.GraphBuilder, name string, opts ...Option) string {
	New(b, name, opts...).Ref("self", name)
	return name
}

// Chain declares n entities prefix0 -> prefix1 -> ... linked by "next" and
// returns the head's name. Every entity gets an "i" field with its index.
func Chain(b *statekeep.GraphBuilder, prefix string, n int, opts ...Option) string {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		eb := New(b, nodeName(prefix, i), opts...).Int("i", int64(i))
		if i+1 < n {
			eb.Ref("next", nodeName(prefix, i+1))
		}
	}
	return nodeName(prefix, 0)
}

// Ring is a Chain whose last entity points back at the head.
func Ring(b *statekeep.GraphBuilder, prefix string, n int, opts ...Option) string {
	head := Chain(b, prefix, n, opts...)
	last := nodeName(prefix, max(n, 1)-1)
	b.Entity(last).Ref("next", head)
	return head
}

// Diamond declares top -> {left, right} -> bottom, so bottom is reachable
// along two paths. It returns the top's name.
func Diamond(b *statekeep.GraphBuilder, prefix string, opts ...Option) string {
	top, left, right, bottom := prefix+"top", prefix+"left", prefix+"right", prefix+"bottom"
	New(b, top, opts...).Ref("left", left).Ref("right", right)
	New(b, left, opts...).Ref("down", bottom)
	New(b, right, opts...).Ref("down", bottom)
	New(b, bottom, opts...)
	return top
}

// PrototypeComponent builds the component used to compare shallow and deep
// copies: an integer, a list of mixed objects and a child holding a back
// reference to the component.
func PrototypeComponent(in *statekeep.Interner) (*statekeep.Graph, error) {
	b := statekeep.NewGraphBuilder(in)
	b.Entity("component").
		Int("some_int", 23).
		List("some_list_of_objects",
			statekeep.ItemScalar(statekeep.Int(1)),
			statekeep.ItemScalar(statekeep.Text("{1, 2, 3}")),
			statekeep.ItemScalar(statekeep.Text("[1, 2, 3]")),
		).
		Ref("some_circular_ref", "backref")
	b.Entity("backref").Ref("parent", "component")
	return b.Build("component")
}

func nodeName(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}
