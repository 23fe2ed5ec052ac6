package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

// ParseError represents a request or defaults file parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError reports a request field whose value failed validation.
// No external command has run when one of these is returned.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, value, message string, err error) error {
	return &ValidationError{Field: field, Value: value, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	if e.Value != "" {
		return fmt.Sprintf("validation error: %s: %s: %q", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ToolNotFoundError indicates the package manager executable could not be located.
type ToolNotFoundError struct {
	Tool     string
	Searched []string
}

// NewToolNotFoundError constructs a ToolNotFoundError.
func NewToolNotFoundError(tool string, searched []string) error {
	return &ToolNotFoundError{Tool: tool, Searched: append([]string(nil), searched...)}
}

func (e *ToolNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unable to locate %s executable", e.Tool)
}

// UnexpectedOutputError indicates the tool's self-report did not have the expected shape.
type UnexpectedOutputError struct {
	Tool   string
	Output string
	Reason string
}

// NewUnexpectedOutputError constructs an UnexpectedOutputError.
func NewUnexpectedOutputError(tool, output, reason string) error {
	return &UnexpectedOutputError{Tool: tool, Output: output, Reason: reason}
}

func (e *UnexpectedOutputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unexpected %s output: %s", e.Tool, e.Reason)
}

// VersionTooOldError indicates the tool is below the supported minimum and no self-update was requested.
type VersionTooOldError struct {
	Tool    string
	Version string
	Minimum string
}

// NewVersionTooOldError constructs a VersionTooOldError.
func NewVersionTooOldError(tool, version, minimum string) error {
	return &VersionTooOldError{Tool: tool, Version: version, Minimum: minimum}
}

func (e *VersionTooOldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s is older than %s; request a self-update first", e.Tool, e.Version, e.Minimum)
}

// CommandFailedError represents a mutating command that exited non-zero or did not converge.
type CommandFailedError struct {
	Argv       []string
	ExitCode   int
	Diagnostic string
	Err        error
}

// NewCommandFailedError constructs a CommandFailedError. The diagnostic is trimmed.
func NewCommandFailedError(argv []string, exitCode int, diagnostic string, err error) error {
	return &CommandFailedError{
		Argv:       append([]string(nil), argv...),
		ExitCode:   exitCode,
		Diagnostic: strings.TrimSpace(diagnostic),
		Err:        err,
	}
}

func (e *CommandFailedError) Error() string {
	if e == nil {
		return ""
	}
	cmd := strings.Join(e.Argv, " ")
	if e.Diagnostic != "" {
		return fmt.Sprintf("command failed (exit %d): %s: %s", e.ExitCode, cmd, e.Diagnostic)
	}
	return fmt.Sprintf("command failed (exit %d): %s", e.ExitCode, cmd)
}

// Unwrap exposes the underlying error.
func (e *CommandFailedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PreconditionError indicates a requested transition is impossible from the current state,
// e.g. linking a package that is not installed.
type PreconditionError struct {
	Target  string
	Message string
}

// NewPreconditionError constructs a PreconditionError.
func NewPreconditionError(target, message string) error {
	return &PreconditionError{Target: target, Message: message}
}

func (e *PreconditionError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Message returns the text shown to users for err. Command failures surface the
// tool's own diagnostic stream; everything else uses Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *CommandFailedError
	if stdErrors.As(err, &cmdErr) && cmdErr.Diagnostic != "" {
		return cmdErr.Diagnostic
	}
	return err.Error()
}
