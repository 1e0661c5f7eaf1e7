package main

import (
	"fmt"

	"github.com/comalice/statekeep"
	"github.com/comalice/statekeep/builder"
)

var shapeNames = []string{"prototype", "self", "chain", "ring", "diamond"}

// buildShape builds one of the named demo graphs. n sizes chain and ring.
func buildShape(in *statekeep.Interner, shape string, n int) (*statekeep.Graph, error) {
	if shape == "prototype" {
		return builder.PrototypeComponent(in)
	}
	b := statekeep.NewGraphBuilder(in)
	model := builder.WithShared("model", statekeep.Texts("BMW", "X6", "black")...)
	var root string
	switch shape {
	case "self":
		root = builder.SelfLoop(b, "self", model)
	case "chain":
		root = builder.Chain(b, "n", n, model)
	case "ring":
		root = builder.Ring(b, "n", n, model)
	case "diamond":
		root = builder.Diamond(b, "", model)
	default:
		return nil, fmt.Errorf("unknown shape %q (want one of %v)", shape, shapeNames)
	}
	return b.Build(root)
}
