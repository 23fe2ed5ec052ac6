package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/converge/internal/config"
	"github.com/alexisbeaulieu97/converge/internal/logger"
	"github.com/alexisbeaulieu97/converge/internal/reconcile"
	"github.com/alexisbeaulieu97/converge/internal/request"
	"github.com/alexisbeaulieu97/converge/internal/runner"
	"github.com/alexisbeaulieu97/converge/internal/tui"
)

// errRunFailed is returned after a failed run has already been reported.
var errRunFailed = errors.New("reconciliation failed")

// newRunner builds the process runner; tests replace it.
var newRunner = func(tee io.Writer, log *logger.Logger) runner.Runner {
	return runner.ExecRunner{Tee: tee, Log: log}
}

func runRequest(cmd *cobra.Command, root *rootFlags, raw request.Raw) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	defaults, err := config.LoadDefaults(root.configPath)
	if err != nil {
		return err
	}
	defaults.Apply(&raw)
	raw.DryRun = raw.DryRun || root.dryRun

	level := "warn"
	if defaults.LogLevel != "" {
		level = defaults.LogLevel
	}
	if root.verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: isTerminal(errOut), Writer: errOut})
	if err != nil {
		return err
	}
	log = log.WithFields(map[string]any{"run_id": uuid.NewString(), "tool": raw.Tool})

	format := tui.FormatPlain
	switch {
	case root.jsonOutput:
		format = tui.FormatJSON
	case isTerminal(out):
		format = tui.FormatStyled
	}

	req, err := request.New(raw)
	if err != nil {
		log.Error(err, "invalid request")
		return report(out, reconcile.Result{Failed: true, Message: err.Error(), Err: err}, format)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var tee io.Writer
	if root.verbose {
		tee = errOut
	}
	engine := reconcile.New(newRunner(tee, log), reconcile.WithLogger(log))

	interactive := !root.verbose && !root.jsonOutput && isTerminal(errOut)
	res := runWithSpinner(ctx, cancel, engine, req, errOut, interactive, log)

	return report(out, res, format)
}

func runWithSpinner(ctx context.Context, cancel context.CancelFunc, engine *reconcile.Engine, req *request.Request, errOut io.Writer, interactive bool, log *logger.Logger) reconcile.Result {
	if !interactive {
		return engine.Run(ctx, req)
	}

	program := tea.NewProgram(tui.NewModel(spinnerTitle(req), cancel), tea.WithOutput(errOut))
	var programErr error
	done := make(chan struct{})
	go func() {
		_, programErr = program.Run()
		close(done)
	}()

	res := engine.Run(ctx, req)
	program.Send(tui.DoneMsg{Result: res})
	<-done
	if programErr != nil {
		log.Warn(fmt.Sprintf("progress display failed: %v", programErr))
	}
	return res
}

func report(out io.Writer, res reconcile.Result, format tui.Format) error {
	if err := tui.Render(out, res, format); err != nil {
		return err
	}
	if res.Failed {
		return errRunFailed
	}
	return nil
}

func spinnerTitle(req *request.Request) string {
	parts := []string{string(req.Tool), string(req.State)}
	if req.Environment != "" {
		parts = append(parts, "in "+req.Environment)
	}
	if len(req.Packages) > 0 {
		parts = append(parts, strings.Join(req.Packages, " "))
	}
	return strings.Join(parts, " ")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
