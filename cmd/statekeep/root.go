package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
	"github.com/comalice/statekeep/internal/production"
)

// app is the state shared by every subcommand, assembled once flags and
// the config file are parsed.
type app struct {
	out      io.Writer
	cfg      primitives.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	opts     []core.Option

	configPath  string
	logLevel    string
	logFormat   string
	dumpMetrics bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "statekeep",
		Short: "Explore shared-state interning, graph cloning and undo history",
		Long: `statekeep drives the interner, the cloner and the snapshot history
from the command line. Settings come from an optional YAML file
(--config) and can be overridden with flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.dumpMetrics {
				return nil
			}
			return a.writeMetrics()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides config)")
	pf.BoolVar(&a.dumpMetrics, "metrics", false, "print collected metrics after the command")

	root.AddCommand(
		newInternCmd(a),
		newCloneCmd(a),
		newHistoryCmd(a),
		newGraphCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg := primitives.DefaultConfig()
	if a.configPath != "" {
		loaded, err := primitives.LoadConfigFile(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(os.Stderr, cfg.Log)

	a.registry = prometheus.NewRegistry()
	metrics, err := production.NewPrometheusMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	a.opts = []core.Option{
		core.WithConfig(cfg),
		core.WithLogger(a.logger),
		core.WithMetrics(metrics),
		core.WithPublisher(production.NewLogPublisher(a.logger, slog.LevelDebug)),
	}
	return nil
}

func newLogger(w io.Writer, lc primitives.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// writeMetrics prints every collected sample as "name{labels} value".
func (a *app) writeMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(a.out, "# metrics")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(a.out, "%s%s %s\n", mf.GetName(), formatLabels(m.GetLabel()), formatSample(mf.GetType(), m))
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func formatSample(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprint(m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprint(m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "?"
	}
}
