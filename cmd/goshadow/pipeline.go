package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/dsl"
	"github.com/reoring/goshadow/rules"
)

// stdinName selects standard input as an input.
const stdinName = "-"

// pipeline turns raw input into an annotated document: parse, then validate
// against the schema, then apply the rule set.
type pipeline struct {
	cfg    *config
	schema dsl.Schema
	rules  *rules.Set
	log    *zap.Logger
	// documents reads combined documents written by "parse" instead of raw input
	documents bool
}

type result struct {
	name string
	doc  g.Annotated[g.Value]
}

func (a *app) pipeline() (*pipeline, error) {
	p := &pipeline{cfg: a.cfg, log: a.log}
	if a.cfg.Schema != "" {
		f, err := os.Open(a.cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to open schema: %w", err)
		}
		defer f.Close()
		if p.schema, err = dsl.ReadYAML(f); err != nil {
			return nil, fmt.Errorf("schema %s: %w", a.cfg.Schema, err)
		}
	}
	if a.cfg.Rules != "" {
		set, err := rules.LoadFile(a.cfg.Rules)
		if err != nil {
			return nil, err
		}
		p.rules = set
		a.log.Debug("rules loaded", zap.String("file", a.cfg.Rules), zap.Int("count", set.Len()))
	}
	return p, nil
}

func (p *pipeline) parse(data []byte) (g.Annotated[g.Value], error) {
	opt := p.cfg.parseOpt()
	if p.documents {
		return g.ParseWithMeta(data, opt)
	}
	switch p.cfg.Format {
	case "json":
		return g.ParseJSON(data, opt)
	case "yaml":
		return g.ParseYAML(data, opt)
	}
	return g.Parse(data, opt)
}

func (p *pipeline) run(name string, data []byte) (g.Annotated[g.Value], error) {
	a, err := p.parse(data)
	if err != nil {
		return a, fmt.Errorf("%s: %w", name, err)
	}
	if p.schema != nil {
		// writing back applies the skip policies and fills missing required fields
		a = g.IntoAnnotated(p.schema.FromValue(a), p.schema)
	}
	if p.rules != nil {
		if err := p.rules.Apply(&a, g.ProcessOpt{Logger: p.log.With(zap.String("input", name))}); err != nil {
			return a, fmt.Errorf("%s: %w", name, err)
		}
	}
	p.log.Debug("processed", zap.String("input", name), zap.Int("bytes", len(data)))
	return a, nil
}

// runAll processes names concurrently, bounded by the configured worker
// count. Results keep the order of names. The first failure cancels the
// inputs not yet started.
func (p *pipeline) runAll(ctx context.Context, names []string, stdin io.Reader) ([]result, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}
	results := make([]result, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Workers)
	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(name, stdin)
			if err != nil {
				return err
			}
			doc, err := p.run(name, data)
			if err != nil {
				return err
			}
			results[i] = result{name: name, doc: doc}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
