package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/faultline/internal/config"
	"github.com/crimson-sun/faultline/internal/engine"
	"github.com/crimson-sun/faultline/internal/output"
	"github.com/crimson-sun/faultline/internal/source"
	"github.com/crimson-sun/faultline/internal/trace"

	// Register renderer implementations.
	_ "github.com/crimson-sun/faultline/internal/output/jsonout"
	_ "github.com/crimson-sun/faultline/internal/output/summary"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "faultline: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "faultline <trace-file-or-glob>",
		Short: "Analyze a simulation trace log",
		Long: `faultline reads a simulation trace log (NDJSON or a JSON array),
reconstructs the simulated cluster topology, pairs clog begin/end
events into durations, and prints aggregate statistics for the run.

When the argument is a glob pattern, the most recently modified
matching file is analyzed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd, cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "summary",
		"output format: "+strings.Join(output.Formats(), ", "))
	flags.StringP("output", "o", "", "write the report to this file instead of stdout")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Int("max-issues", 10, "parse failures to retain verbatim in the report")
	flags.StringVar(&cfgFile, "config", "", "config file path")

	must(v.BindPFlag("output.format", flags.Lookup("format")))
	must(v.BindPFlag("output.path", flags.Lookup("output")))
	must(v.BindPFlag("log.verbose", flags.Lookup("verbose")))
	must(v.BindPFlag("report.max_issues", flags.Lookup("max-issues")))

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			v.Set("output.color", false)
		}
	}
	return cmd
}

func run(cmd *cobra.Command, cfg config.Config, arg string) error {
	log, err := newLogger(cfg.Log.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	if !cfg.Output.Color {
		color.NoColor = true
	}

	path, err := source.Resolve(arg)
	if err != nil {
		return err
	}
	log.Debug("resolved trace source", zap.String("path", path))

	r, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	rep, err := engine.New(engine.Config{MaxIssues: cfg.Report.MaxIssues}, log).Assemble(r)
	if err != nil {
		return err
	}
	if rep.Meta.Events == 0 {
		return fmt.Errorf("no events parsed from %s", path)
	}

	ctor, err := output.Get(cfg.Output.Format)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		color.NoColor = true // never write escape codes to files
		w = f
	}
	return ctor().Render(w, rep)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
