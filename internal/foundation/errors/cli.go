package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by the docsite CLI.
const (
	ExitGeneral    = 1
	ExitValidation = 2
	ExitNotFound   = 4
	ExitConfig     = 7
	ExitEvents     = 8
	ExitInternal   = 10
	ExitContent    = 11
	ExitRuntime    = 12
)

// CLIErrorAdapter reports command failures on stderr and maps them to exit codes.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassified(err)
	if !ok {
		return ExitGeneral
	}
	switch c.Category() {
	case CategoryValidation:
		return ExitValidation
	case CategoryConfig:
		return ExitConfig
	case CategoryNotFound:
		return ExitNotFound
	case CategoryEvents:
		return ExitEvents
	case CategoryFileSystem, CategoryContent, CategoryManifest, CategorySearch:
		return ExitContent
	case CategoryRuntime:
		return ExitRuntime
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError renders err for the terminal. Verbose mode prints the full chain.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok:
		return fmt.Sprintf("Error: %v", err)
	case a.verbose:
		return c.Error()
	}
	switch c.Category() {
	case CategoryConfig, CategoryValidation, CategoryNotFound:
		return c.Message()
	case CategoryInternal:
		return "Internal error occurred (use -v for details)"
	default:
		return fmt.Sprintf("%s: %s", c.Category(), c.Message())
	}
}

// HandleError prints err and terminates the process with its exit code.
// Fatal and unclassified errors are also logged; verbose mode logs everything.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	c, classified := AsClassified(err)
	switch {
	case !classified:
		a.logger.Error("unclassified error", slog.Any("error", err))
	case a.verbose || c.Severity() == SeverityFatal:
		a.logger.LogAttrs(context.Background(), levelFor(c.Severity()), c.Message(),
			slog.String("category", string(c.Category())),
			slog.Bool("retryable", c.CanRetry()))
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}
