package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/production"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		shape  string
		n      int
		format string
	)
	cmd := &cobra.Command{
		Use:     "graph",
		Short:   "Render a demo graph as Graphviz DOT, JSON or YAML",
		Example: `  statekeep graph --shape ring --n 4 | dot -Tsvg > ring.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildShape(core.NewInterner(a.opts...), shape, n)
			if err != nil {
				return err
			}
			v := &production.DefaultVisualizer{}
			switch format {
			case "dot":
				_, err = fmt.Fprint(a.out, v.ExportDOT(g.Arena(), g.Root()))
				return err
			case "json", "yaml", "yml":
				f, _ := production.ParseFormat(format)
				var data []byte
				if f == production.FormatJSON {
					data, err = v.ExportJSON(g.Arena(), g.Root())
				} else {
					data, err = v.ExportYAML(g.Arena(), g.Root())
				}
				if err != nil {
					return err
				}
				_, err = a.out.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format %q (want dot, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "prototype", fmt.Sprintf("graph shape: %v", shapeNames))
	cmd.Flags().IntVar(&n, "n", 4, "entity count for chain and ring")
	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot, json or yaml")
	return cmd
}
