package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Copier duplicates a captured state so the copy shares no mutable memory
// with the original.
type Copier[S any] func(S) (S, error)

// DefaultCopier returns the copier History uses when none is configured:
// a Clone method on the state type wins (either `Clone() S` or
// `Clone() (S, error)`), otherwise the state is round-tripped through YAML.
// The YAML path only sees exported fields; state types with unexported
// fields should implement Clone.
func DefaultCopier[S any]() Copier[S] {
	return func(s S) (S, error) {
		switch c := any(s).(type) {
		case interface{ Clone() S }:
			return c.Clone(), nil
		case interface{ Clone() (S, error) }:
			return c.Clone()
		}
		return YAMLCopy(s)
	}
}

// YAMLCopy deep-copies s by encoding and decoding it with yaml.v3.
func YAMLCopy[S any](s S) (S, error) {
	var out S
	data, err := yaml.Marshal(s)
	if err != nil {
		return out, fmt.Errorf("yaml copy marshal: %w", err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("yaml copy unmarshal: %w", err)
	}
	return out, nil
}
