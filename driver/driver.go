// Package driver orchestrates the compiler pipeline end to end: parse,
// desugar, validate, and emit, in that order, mirroring the linear
// parse/check/build/write sequence a one-shot compiler entry point
// typically drives.
package driver

import (
	"github.com/rs/zerolog"

	"github.com/z2-2z/chameleon/desugar"
	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/emit"
	"github.com/z2-2z/chameleon/ir"
	"github.com/z2-2z/chameleon/surface"
)

// Options configures one end-to-end compile.
type Options struct {
	Entrypoint string // defaults to "Root"
	Prefix     string // defaults to emit.DefaultPrefix
	Baby       bool
	ThreadSafe bool
	Visible    bool
	BuildID    string
}

// A Result holds everything one compile produced.
type Result struct {
	Grammar *ir.Grammar
	Source  string
	Header  string
}

// Compile reads and merges every path in paths, desugars the merged
// grammar, validates it, and emits C source and header text. It stops
// at the first stage that fails and returns that stage's diagnostics:
// parsing stops at its first error, while desugaring and validation
// return every diagnostic they gathered, sorted and deduplicated.
func Compile(paths []string, opts Options, log zerolog.Logger) (*Result, []*diag.Error) {
	log.Info().Strs("paths", paths).Msg("parsing grammar files")
	p := surface.NewParser()
	for _, path := range paths {
		if err := p.ParseFile(path); err != nil {
			if de, ok := err.(*diag.Error); ok {
				return nil, []*diag.Error{de}
			}
			return nil, []*diag.Error{diag.New(diag.IoError, err.Error())}
		}
	}

	log.Info().Str("entrypoint", opts.Entrypoint).Msg("desugaring into grammar IR")
	gram, errs := desugar.Build(p.Grammar(), opts.Entrypoint)
	if len(errs) > 0 {
		return nil, diag.Sort(errs)
	}

	for _, id := range gram.LeftRecursive {
		log.Warn().Str("nonterminal", gram.Nonterminals[id].Name).
			Msg("nonterminal is left-recursive; recursion is bounded only by walk capacity")
	}

	log.Info().Bool("baby", opts.Baby).Msg("emitting C source")
	emitOpts := emit.Options{
		Prefix:     opts.Prefix,
		Baby:       opts.Baby,
		ThreadSafe: opts.ThreadSafe,
		Visible:    opts.Visible,
		BuildID:    opts.BuildID,
	}
	source, err := emit.Source(gram, emitOpts)
	if err != nil {
		return nil, []*diag.Error{err}
	}
	header := emit.Header(gram, emitOpts)

	return &Result{Grammar: gram, Source: source, Header: header}, nil
}
