package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/comalice/statekeep/internal/primitives"
)

// Graph is a detached copy of an entity graph: a private arena plus the
// handle of its root. Nothing outside the Graph references its arena, so a
// Graph captured from a live entity is unaffected by later mutation.
type Graph struct {
	arena *primitives.Arena
	root  primitives.Handle
}

// NewGraph wraps an arena and root. The caller hands over ownership of a.
func NewGraph(a *primitives.Arena, root primitives.Handle) *Graph {
	return &Graph{arena: a, root: root}
}

// Detach deep-copies the graph reachable from root in src into a new Graph.
func Detach(ctx context.Context, c *Cloner, src *primitives.Arena, root primitives.Handle) (*Graph, error) {
	dst := primitives.NewArena()
	h, err := c.DeepInto(ctx, dst, src, root, nil)
	if err != nil {
		return nil, err
	}
	return &Graph{arena: dst, root: h}, nil
}

func (g *Graph) Arena() *primitives.Arena { return g.arena }

func (g *Graph) Root() primitives.Handle { return g.root }

// Len returns the number of entities in the graph.
func (g *Graph) Len() int { return g.arena.Len() }

// Clone returns an independent copy of g.
func (g *Graph) Clone() (*Graph, error) {
	return Detach(context.Background(), NewCloner(), g.arena, g.root)
}

// Field returns a root field.
func (g *Graph) Field(name string) (primitives.Value, bool) {
	return g.arena.Get(g.root, name)
}

// String renders the root's fields, e.g. "{n: 56, next: &e0.1}".
func (g *Graph) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	_ = g.arena.RangeFields(g.root, func(name string, v primitives.Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", name, v)
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// GraphOriginator exposes one live entity of an arena as an Originator, so
// a History can snapshot and restore the graph reachable from it.
//
// Restoring keeps the root handle stable: the snapshot is deep-copied back
// with its root mapped onto the live root, whose fields are replaced.
// Entities that were only reachable through the old fields are left in the
// arena for their owner to free.
type GraphOriginator struct {
	cloner   *Cloner
	arena    *primitives.Arena
	root     primitives.Handle
	validate func(*Graph) error
}

// NewGraphOriginator creates an originator for root. validate may be nil;
// when set, a snapshot it returns an error for is rejected.
func NewGraphOriginator(c *Cloner, a *primitives.Arena, root primitives.Handle, validate func(*Graph) error) *GraphOriginator {
	if c == nil {
		c = NewCloner()
	}
	return &GraphOriginator{cloner: c, arena: a, root: root, validate: validate}
}

func (o *GraphOriginator) Root() primitives.Handle { return o.root }

// CaptureState detaches a copy of the live graph.
func (o *GraphOriginator) CaptureState() (*Graph, error) {
	return Detach(context.Background(), o.cloner, o.arena, o.root)
}

// ApplyState restores g onto the live root.
func (o *GraphOriginator) ApplyState(g *Graph) error {
	if g == nil {
		return fmt.Errorf("apply nil graph")
	}
	if o.validate != nil {
		if err := o.validate(g); err != nil {
			return fmt.Errorf("validate snapshot: %w", err)
		}
	}
	memo := NewMemo()
	memo.Register(g.root, o.root)
	if _, err := o.cloner.DeepInto(context.Background(), o.arena, g.arena, g.root, memo); err != nil {
		return fmt.Errorf("restore graph: %w", err)
	}
	return nil
}
