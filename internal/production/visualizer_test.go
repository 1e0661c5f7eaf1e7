// Tests for DefaultVisualizer DOT and document export.
package production

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
)

func sampleGraph(t *testing.T) (*primitives.Arena, primitives.Handle, primitives.Handle) {
	t.Helper()
	a := primitives.NewArena()
	root := a.New()
	child := a.New()
	in := core.NewInterner()
	model, _ := in.Intern(primitives.Texts("BMW", "X6", "black")...)
	must(t, a.SetScalar(root, "n", primitives.Int(56)))
	must(t, a.SetRef(root, "child", child))
	must(t, a.Append(root, "objs", primitives.RefValue(child), primitives.ScalarValue(primitives.Int(1))))
	must(t, a.Set(root, "model", primitives.SharedValue(model)))
	must(t, a.SetRef(child, "parent", root))
	return a, root, child
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestDefaultVisualizer_ExportDOT(t *testing.T) {
	a, root, child := sampleGraph(t)
	v := &DefaultVisualizer{}
	dot := v.ExportDOT(a, root)

	if !strings.Contains(dot, `digraph Entities {`) {
		t.Error("Missing DOT header")
	}
	for _, want := range []string{
		`"` + root.String() + `" -> "` + child.String() + `" [label="child"]`,
		`"` + root.String() + `" -> "` + child.String() + `" [label="objs[0]"]`,
		`"` + child.String() + `" -> "` + root.String() + `" [label="parent"]`,
		`shape=ellipse label="BMW, X6, black"`,
		`fillcolor=lightgreen`,
		`n = 56`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestDefaultVisualizer_Documents(t *testing.T) {
	a, root, _ := sampleGraph(t)
	v := &DefaultVisualizer{}

	data, err := v.ExportJSON(a, root)
	if err != nil {
		t.Fatal(err)
	}
	var doc GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Root != root.String() || len(doc.Entities) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if got := doc.Entities[0].Fields["model"]; got != "(BMW, X6, black)" {
		t.Errorf("model field = %q", got)
	}

	data, err = v.ExportYAML(a, root)
	if err != nil {
		t.Fatal(err)
	}
	var ydoc GraphDocument
	if err := yaml.Unmarshal(data, &ydoc); err != nil {
		t.Fatal(err)
	}
	if len(ydoc.Entities) != 2 || ydoc.Entities[0].Fields["n"] != "56" {
		t.Errorf("unexpected YAML document %+v", ydoc)
	}
}

func TestEscapeRecord(t *testing.T) {
	if got := escapeRecord(`a{b}|<c>`); got != `a\{b\}\|\<c\>` {
		t.Errorf("escapeRecord = %q", got)
	}
}
