package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/lalrpop-ide/internal/cli"
	"github.com/orizon-lang/lalrpop-ide/internal/diagnostic"
	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/inspect"
	"github.com/orizon-lang/lalrpop-ide/internal/oracle"
	"github.com/orizon-lang/lalrpop-ide/internal/position"
	"github.com/orizon-lang/lalrpop-ide/internal/watch"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 200 * time.Millisecond

type checkCommand struct {
	app     *app
	Watch   bool `short:"w" long:"watch" description:"check again whenever a dump changes"`
	Context bool `long:"context" description:"show the source lines of each issue"`
	Args    struct {
		Dumps []string `positional-arg-name:"DUMP" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *checkCommand) Execute([]string) error {
	config, logger, err := c.app.config()
	if err != nil {
		return err
	}
	if ok, _ := cli.CheckGeneratorVersion(config.GeneratorVersion); !ok {
		logger.Warn("generator %s is outside %s; untyped rules with action code are assumed to be ()",
			config.GeneratorVersion, cli.VerifiedGeneratorRange)
	}
	checker := newChecker(config, logger)

	engine, err := c.checkFiles(c.app.ctx, config, logger, checker, c.Args.Dumps)
	if err != nil {
		return err
	}
	if !c.Watch {
		if engine.HasErrors() {
			return errIssues
		}
		return nil
	}

	w, err := watch.New(c.Args.Dumps...)
	if err != nil {
		return err
	}
	defer w.Close()
	logger.Info("watching %d file(s)", len(c.Args.Dumps))
	err = w.Run(c.app.ctx, watchDebounce, func(paths []string) {
		if _, err := c.checkFiles(c.app.ctx, config, logger, checker, paths); err != nil {
			logger.Error("%v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newChecker builds the checker from config: an external oracle when a
// command is configured, the structural one otherwise.
func newChecker(config *cli.Config, logger *cli.Logger) *inspect.Checker {
	var host oracle.Host
	if config.Oracle.Command != "" {
		logger.Info("using type oracle %s", config.Oracle.Command)
		host = oracle.NewProcessHost(config.Oracle.Command, config.Oracle.Args...)
	} else {
		host = oracle.NewStructuralHost(config.Index)
	}
	return inspect.NewChecker(oracle.NewAdapter(host, logger), logger).WithDefaults(defaults(config))
}

// checkFiles checks dumps concurrently and prints the diagnostics of all
// of them. The first failing dump cancels the rest.
func (c *checkCommand) checkFiles(ctx context.Context, config *cli.Config, logger *cli.Logger, checker *inspect.Checker, dumps []string) (*diagnostic.DiagnosticEngine, error) {
	results := make([][]diagnostic.Diagnostic, len(dumps))
	sources := make([]*position.SourceFile, len(dumps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Concurrency)
	for i, dump := range dumps {
		i, dump := i, dump
		g.Go(func() error {
			file, err := grammar.Load(ctx, dump)
			if err != nil {
				return err
			}
			fileLogger := logger.With("file", file.Path)
			scope := scopeOf(ctx, config, fileLogger, dump, file)
			diagnostics, err := checker.Check(ctx, file, scope)
			if err != nil {
				return err
			}
			fileLogger.Info("checked %d rule(s), %d issue(s)", len(file.Nonterminals), len(diagnostics))
			results[i] = diagnostics
			sources[i] = file.Source
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine := diagnostic.NewDiagnosticEngine(diagnostic.DiagnosticConfig{
		IgnoreCodes:      config.IgnoreCodes,
		WarningsAsErrors: config.WarningsAsErrors,
	})
	for _, diagnostics := range results {
		engine.Add(diagnostics...)
	}

	if !c.Context {
		fmt.Fprint(c.app.stdout, engine.Format())
		return engine, nil
	}
	byName := make(map[string]*position.SourceFile)
	for _, sf := range sources {
		if sf != nil && sf.Content != "" {
			byName[sf.Filename] = sf
		}
	}
	fmt.Fprint(c.app.stdout, engine.FormatWithSources(byName))
	return engine, nil
}

// scopeOf locates the module generated from the grammar of file. A
// relative grammar path is taken relative to the configured crate root, or
// to the dump's directory without one.
func scopeOf(ctx context.Context, config *cli.Config, logger *cli.Logger, dump string, file *grammar.File) *oracle.Scope {
	path := file.Path
	root := config.CrateRoot
	if !filepath.IsAbs(path) {
		base := root
		if base == "" {
			base = filepath.Dir(dump)
		}
		path = filepath.Join(base, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	} else {
		found, err := oracle.FindCrateRoot(ctx, path)
		if err != nil {
			logger.Warn("locate crate: %v", err)
		}
		root = found
	}
	scope, ok := oracle.ScopeFor(root, path)
	if !ok {
		logger.Info("no crate module for %s, differently spelled types are reported", path)
		return nil
	}
	logger.Debug("module %s", scope)
	return scope
}
