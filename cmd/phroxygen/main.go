package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/glimte/phroxy-go/internal/codegen"
	"github.com/glimte/phroxy-go/internal/config"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "phroxygen",
		Short: "Generate interceptable wrappers for Go struct types",
		Long: `phroxygen writes a wrapper type for each named struct. The wrapper embeds the
original and routes every non-final method through a phroxy interceptor chain.
Methods marked //phroxy:final stay promoted from the embedded type.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd.Flags(), cfg, &overrides)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			level, _ := cfg.Level()
			logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level}))

			return generate(cfg, codegen.NewParser(),
				codegen.NewGenerator(codegen.NewGoimportsFormatter(), codegen.NewFileWriter(), cfg.Suffix),
				logger,
			)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVarP(&overrides.Package, "package", "p", "", "Package containing the types")
	flags.StringSliceVarP(&overrides.Types, "type", "t", nil, "Type to wrap (repeatable)")
	flags.StringVarP(&overrides.Output, "output", "o", "", "Output file")
	flags.StringVar(&overrides.Suffix, "suffix", "", "Suffix of wrapper type names")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	return rootCmd
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(flags *pflag.FlagSet, cfg *config.Config, overrides *config.Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "package":
			cfg.Package = overrides.Package
		case "type":
			cfg.Types = overrides.Types
		case "output":
			cfg.Output = overrides.Output
		case "suffix":
			cfg.Suffix = overrides.Suffix
		case "log-level":
			cfg.LogLevel = overrides.LogLevel
		}
	})
}

// generate parses every configured type and writes the wrappers of those that
// parsed. Per-type failures are combined into the returned error.
func generate(cfg *config.Config, parser codegen.Parser, gen codegen.Generator, logger *slog.Logger) error {
	var (
		models []*codegen.TypeModel
		errs   error
	)

	for _, name := range cfg.Types {
		model, err := parser.Parse(cfg.Package, name)
		if err != nil {
			logger.Error("type skipped", "type", name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		logger.Debug("type parsed", "type", name, "methods", len(model.Methods), "final", len(model.FinalMethods()))
		models = append(models, model)
	}

	if len(models) == 0 {
		return errs
	}

	output := cfg.OutputFile()
	if cfg.Output == "" && models[0].Dir != "" {
		output = filepath.Join(models[0].Dir, output)
	}
	if err := gen.Generate(output, models); err != nil {
		return multierr.Append(errs, fmt.Errorf("generate %s: %w", output, err))
	}
	logger.Info("wrappers generated", "output", output, "types", len(models))
	return errs
}
