package production

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// HistoryDocument is the exported form of a history's summaries, oldest first.
type HistoryDocument struct {
	Depth     int            `json:"depth" yaml:"depth"`
	Snapshots []core.Summary `json:"snapshots" yaml:"snapshots"`
}

// InternedDocument is one interned shared state.
type InternedDocument struct {
	Key    string              `json:"key" yaml:"key"`
	Fields []primitives.Scalar `json:"fields" yaml:"fields"`
}

// InternerDocument is the exported form of an interner listing.
type InternerDocument struct {
	Stats   core.InternStats   `json:"stats" yaml:"stats"`
	Entries []InternedDocument `json:"entries" yaml:"entries"`
}

// Exporter writes history and interner listings as JSON or YAML.
type Exporter struct {
	format Format
}

// NewExporter creates an Exporter for the given format.
func NewExporter(format Format) *Exporter {
	return &Exporter{format: format}
}

// ExportHistory drains summaries into a HistoryDocument and writes it to w.
func (e *Exporter) ExportHistory(ctx context.Context, w io.Writer, summaries iter.Seq[core.Summary]) error {
	doc := HistoryDocument{Snapshots: []core.Summary{}}
	for s := range summaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc.Snapshots = append(doc.Snapshots, s)
	}
	doc.Depth = len(doc.Snapshots)
	return e.encode(w, doc)
}

// ExportInterner writes every interned shared state, ordered by key.
func (e *Exporter) ExportInterner(ctx context.Context, w io.Writer, in *core.Interner) error {
	doc := InternerDocument{Stats: in.Stats(), Entries: []InternedDocument{}}
	for key, s := range in.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc.Entries = append(doc.Entries, InternedDocument{Key: key.String(), Fields: s.Fields()})
	}
	return e.encode(w, doc)
}

// SaveFile writes v under dir as name plus the format's extension and
// returns the written path.
func (e *Exporter) SaveFile(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	fn := filepath.Join(dir, name+"."+string(e.format))
	f, err := os.Create(fn)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fn, err)
	}
	if err := e.encode(f, v); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", fn, err)
	}
	return fn, nil
}

func (e *Exporter) encode(w io.Writer, v any) error {
	switch e.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", e.format)
	}
}
