// Command lpcheck inspects LALRPOP grammar tree dumps. It reports
// alternatives whose type disagrees with their rule and answers the
// questions an editor asks about a grammar: rule types, reference targets
// and the host code wrapped around action code.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"

	"github.com/orizon-lang/lalrpop-ide/internal/cli"
	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
	"github.com/orizon-lang/lalrpop-ide/internal/resolve"
)

const toolName = "lpcheck"

// Exit codes.
const (
	exitOK     = 0
	exitIssues = 1
	exitUsage  = 2
	exitInput  = 3
	exitFailed = 4
)

// errIssues reports that check found error level diagnostics.
var errIssues = errors.New("issues found")

// globalOptions apply to every command.
type globalOptions struct {
	Config  string `short:"c" long:"config" description:"configuration file (local path or URL)"`
	Verbose bool   `short:"v" long:"verbose" description:"log progress"`
	Debug   bool   `long:"debug" description:"log resolution details"`
	LogJSON bool   `long:"log-json" description:"write log records as JSON"`
}

type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	opts   globalOptions
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{ctx: ctx, stdout: stdout, stderr: stderr}

	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = toolName
	commands := []struct {
		name, short string
		data        interface{}
	}{
		{"check", "report alternatives with inconsistent types", &checkCommand{app: a}},
		{"types", "print the resolved type of every rule", &typesCommand{app: a}},
		{"inject", "print the host code around an action", &injectCommand{app: a}},
		{"refs", "print what every rule reference resolves to", &refsCommand{app: a}},
		{"version", "print version information", &versionCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, "", c.data); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailed
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return a.exitCode(err)
	}
	return exitOK
}

func (a *app) exitCode(err error) int {
	var flagsErr *flags.Error
	switch {
	case errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
		fmt.Fprintln(a.stdout, flagsErr.Message)
		return exitOK
	case errors.As(err, &flagsErr):
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	case errors.Is(err, errIssues):
		return exitIssues
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	switch lperrors.CategoryOf(err) {
	case lperrors.CategoryConfig, lperrors.CategoryInput:
		return exitInput
	default:
		return exitFailed
	}
}

// config loads the configuration file, letting command line switches
// override its logging settings.
func (a *app) config() (*cli.Config, *cli.Logger, error) {
	config, err := cli.LoadConfig(a.ctx, a.opts.Config)
	if err != nil {
		return nil, nil, err
	}
	config.Verbose = config.Verbose || a.opts.Verbose
	config.Debug = config.Debug || a.opts.Debug
	logger := cli.NewLoggerTo(a.stderr, config.Verbose, config.Debug, a.opts.LogJSON)
	if config.URL != "" {
		logger.Info("loaded configuration %s", config.URL)
	}
	return config, logger, nil
}

// defaults returns the ambient types for grammars without extern block.
func defaults(config *cli.Config) resolve.Context {
	ctx := resolve.DefaultContext()
	if config.Defaults.Location != "" {
		ctx.LocationType = config.Defaults.Location
	}
	if config.Defaults.Error != "" {
		ctx.ErrorType = config.Defaults.Error
	}
	if config.Defaults.Token != "" {
		ctx.TokenType = config.Defaults.Token
	}
	return ctx
}
