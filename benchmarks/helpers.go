// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statekeep"
	"github.com/comalice/statekeep/builder"
)

// GenFieldSets returns n field sets drawn from distinct unique values, each
// repeated dup times, so an interner sees n*dup calls for n states.
func GenFieldSets(n, dup int) [][]statekeep.Scalar {
	if n < 1 {
		n = 1
	}
	if dup < 1 {
		dup = 1
	}
	sets := make([][]statekeep.Scalar, 0, n*dup)
	for d := 0; d < dup; d++ {
		for i := 0; i < n; i++ {
			sets = append(sets, statekeep.Texts("maker", fmt.Sprintf("model_%d", i), "black"))
		}
	}
	return sets
}

// GenChainGraph builds a chain of n entities with a shared field on each.
func GenChainGraph(n int, ring bool) *statekeep.Graph {
	b := statekeep.NewGraphBuilder(nil)
	opt := builder.WithShared("model", statekeep.Texts("BMW", "X6", "black")...)
	var head string
	if ring {
		head = builder.Ring(b, "n", n, opt)
	} else {
		head = builder.Chain(b, "n", n, opt)
	}
	g, err := b.Build(head)
	if err != nil {
		panic(err)
	}
	return g
}

// GenWideGraph builds one root referencing n leaves through a list, and
// every leaf referencing the root back.
func GenWideGraph(n int) *statekeep.Graph {
	b := statekeep.NewGraphBuilder(nil)
	items := make([]statekeep.Item, n)
	for i := range items {
		leaf := fmt.Sprintf("leaf%d", i)
		items[i] = statekeep.ItemRef(leaf)
		b.Entity(leaf).Int("i", int64(i)).Ref("root", "root")
	}
	b.Entity("root").List("leaves", items...)
	g, err := b.Build("root")
	if err != nil {
		panic(err)
	}
	return g
}

// Doc is a YAML-copyable state used to compare copier strategies.
type Doc struct {
	Title string            `yaml:"title"`
	Tags  []string          `yaml:"tags"`
	Attrs map[string]string `yaml:"attrs"`
}

// Clone implements the fast copier path.
func (d Doc) Clone() Doc {
	out := Doc{Title: d.Title, Tags: append([]string(nil), d.Tags...), Attrs: make(map[string]string, len(d.Attrs))}
	for k, v := range d.Attrs {
		out.Attrs[k] = v
	}
	return out
}

// GenDoc returns a Doc with n tags and n attributes.
func GenDoc(n int) Doc {
	d := Doc{Title: "doc", Attrs: make(map[string]string, n)}
	for i := 0; i < n; i++ {
		d.Tags = append(d.Tags, fmt.Sprintf("tag%d", i))
		d.Attrs[fmt.Sprintf("k%d", i)] = fmt.Sprintf("v%d", i)
	}
	return d
}

// GenDocYAML serializes GenDoc(n), the payload the YAML copier round-trips.
func GenDocYAML(n int) []byte {
	data, err := yaml.Marshal(GenDoc(n))
	if err != nil {
		panic(err)
	}
	return data
}

// DocOriginator is a minimal single-goroutine originator for benchmarks.
type DocOriginator struct {
	Doc Doc
}

func (o *DocOriginator) CaptureState() (Doc, error) { return o.Doc, nil }

func (o *DocOriginator) ApplyState(d Doc) error {
	o.Doc = d
	return nil
}
