// Package production provides production integrations: metrics, event
// publishing, visualization and export.
package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statekeep/internal/primitives"
)

// DefaultVisualizer renders entity graphs for inspection. It makes sharing
// and cycles visible: an entity referenced twice is drawn once with two
// incoming edges, and interned shared state is drawn as one ellipse per
// canonical key.
type DefaultVisualizer struct{}

// GraphDocument is the serializable form of the graph reachable from a root.
type GraphDocument struct {
	Root     string           `json:"root" yaml:"root"`
	Entities []EntityDocument `json:"entities" yaml:"entities"`
}

// EntityDocument lists one entity's fields in rendered form.
type EntityDocument struct {
	Handle string            `json:"handle" yaml:"handle"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// ExportDOT generates Graphviz DOT source for the graph reachable from root.
func (v *DefaultVisualizer) ExportDOT(a *primitives.Arena, root primitives.Handle) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Entities {
  rankdir=LR;
  node [shape=record, fontsize=10];
  edge [fontsize=9];
`)

	shared := make(map[primitives.CanonicalKey]*primitives.SharedState)
	var edges []Edge
	for _, h := range a.Reachable(root) {
		var labels []string
		_ = a.RangeFields(h, func(name string, val primitives.Value) bool {
			edges = append(edges, collectEdges(h, name, val, shared)...)
			if val.Kind() == primitives.ValueScalar || val.Kind() == primitives.ValueSet {
				labels = append(labels, escapeRecord(name+" = "+val.String()))
			}
			return true
		})
		style := ""
		if h == root {
			style = ` style=filled fillcolor=lightgreen`
		}
		label := h.String()
		if len(labels) > 0 {
			label += "|" + strings.Join(labels, `\l`) + `\l`
		}
		buf.WriteString(fmt.Sprintf("  %q [label=\"{%s}\"%s];\n", h.String(), label, style))
	}

	for key, s := range shared {
		buf.WriteString(fmt.Sprintf("  %q [shape=ellipse label=%q];\n", "s_"+key.Short(), s.String()))
	}

	for _, edge := range edges {
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", edge.From, edge.To, edge.Label))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Document builds the GraphDocument for root.
func (v *DefaultVisualizer) Document(a *primitives.Arena, root primitives.Handle) GraphDocument {
	doc := GraphDocument{Root: root.String()}
	for _, h := range a.Reachable(root) {
		ent := EntityDocument{Handle: h.String(), Fields: make(map[string]string)}
		_ = a.RangeFields(h, func(name string, val primitives.Value) bool {
			ent.Fields[name] = val.String()
			return true
		})
		doc.Entities = append(doc.Entities, ent)
	}
	return doc
}

// ExportJSON serializes the graph document to indented JSON.
func (v *DefaultVisualizer) ExportJSON(a *primitives.Arena, root primitives.Handle) ([]byte, error) {
	return json.MarshalIndent(v.Document(a, root), "", "  ")
}

// ExportYAML serializes the graph document to YAML.
func (v *DefaultVisualizer) ExportYAML(a *primitives.Arena, root primitives.Handle) ([]byte, error) {
	return yaml.Marshal(v.Document(a, root))
}

// Edge represents a reference from one entity field to its target.
type Edge struct {
	From  string
	To    string
	Label string
}

// collectEdges returns the edges contributed by one field. List items are
// labeled name[i].
func collectEdges(from primitives.Handle, name string, val primitives.Value, shared map[primitives.CanonicalKey]*primitives.SharedState) []Edge {
	switch val.Kind() {
	case primitives.ValueRef:
		to, _ := val.Ref()
		return []Edge{{From: from.String(), To: to.String(), Label: name}}
	case primitives.ValueShared:
		s, _ := val.Shared()
		if s == nil {
			return nil
		}
		shared[s.Key()] = s
		return []Edge{{From: from.String(), To: "s_" + s.Key().Short(), Label: name}}
	case primitives.ValueList:
		items, _ := val.List()
		var edges []Edge
		for i, item := range items {
			edges = append(edges, collectEdges(from, fmt.Sprintf("%s[%d]", name, i), item, shared)...)
		}
		return edges
	default:
		return nil
	}
}

// escapeRecord escapes characters that are special inside DOT record labels.
func escapeRecord(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "{", `\{`, "}", `\}`, "|", `\|`, "<", `\<`, ">", `\>`)
	return r.Replace(s)
}
