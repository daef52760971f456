package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eaburns/pretty"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/driver"
)

// fileConfig is the optional YAML shape loaded via --config, giving
// default values for flags a caller would otherwise have to repeat on
// every invocation.
type fileConfig struct {
	Entrypoint string `yaml:"entrypoint"`
	Prefix     string `yaml:"prefix"`
	Baby       bool   `yaml:"baby"`
	ThreadSafe bool   `yaml:"thread_safe"`
	Visible    bool   `yaml:"visible"`
}

type translateOptions struct {
	*rootOptions
	Output     string
	Entrypoint string
	Prefix     string
	Baby       bool
	ThreadSafe bool
	Visible    bool
}

func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "translate <grammar.chm> [more.chm...]",
		Short: "Translate one or more .chm grammar files into C source and a header",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output .c path; the .h path is derived by swapping the extension (required)")
	cmd.Flags().StringVar(&opts.Entrypoint, "entrypoint", "Root", "name of the nonterminal to start generation from")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "chameleon", "public symbol prefix for the generated runtime API")
	cmd.Flags().BoolVar(&opts.Baby, "baby", false, "emit the walk-less seed+generate-only variant")
	cmd.Flags().BoolVar(&opts.ThreadSafe, "thread-safe", false, "make the generated PRNG state thread-local")
	cmd.Flags().BoolVar(&opts.Visible, "visible", false, "mark the generated public functions default-visibility")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runTranslate(cmd *cobra.Command, opts *translateOptions, paths []string) error {
	log := newLogger(opts.Verbose)

	if opts.Config != "" {
		if err := applyFileConfig(cmd, opts); err != nil {
			return err
		}
	}

	buildID := uuid.NewString()
	res, errs := driver.Compile(paths, driver.Options{
		Entrypoint: opts.Entrypoint,
		Prefix:     opts.Prefix,
		Baby:       opts.Baby,
		ThreadSafe: opts.ThreadSafe,
		Visible:    opts.Visible,
		BuildID:    buildID,
	}, log)

	if len(errs) > 0 {
		for _, e := range diag.Sort(errs) {
			fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		}
		return fmt.Errorf("%d diagnostic(s)", len(errs))
	}

	if log.GetLevel() <= zerolog.DebugLevel {
		log.Debug().Msg(pretty.String(res.Grammar))
	}

	if err := os.WriteFile(opts.Output, []byte(res.Source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.Output, err)
	}
	headerPath := strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output)) + ".h"
	if err := os.WriteFile(headerPath, []byte(res.Header), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", headerPath, err)
	}

	log.Info().Str("source", opts.Output).Str("header", headerPath).Msg("wrote generated runtime")
	return nil
}

func applyFileConfig(cmd *cobra.Command, opts *translateOptions) error {
	data, err := os.ReadFile(opts.Config)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", opts.Config, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", opts.Config, err)
	}
	set := cmd.Flags().Changed
	if fc.Entrypoint != "" && !set("entrypoint") {
		opts.Entrypoint = fc.Entrypoint
	}
	if fc.Prefix != "" && !set("prefix") {
		opts.Prefix = fc.Prefix
	}
	if !set("baby") {
		opts.Baby = fc.Baby
	}
	if !set("thread-safe") {
		opts.ThreadSafe = fc.ThreadSafe
	}
	if !set("visible") {
		opts.Visible = fc.Visible
	}
	return nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
}
