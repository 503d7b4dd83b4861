package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failed or some sinks failed
	ExitCommandError = 2 // Bad flags, bad config, unreadable store
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// texter is implemented by results that have a human readable form.
type texter interface {
	Text() string
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for command output.
type CLIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (f *OutputFormatter) Success(data any) error {
	return f.emit("ok", data, "")
}

// Partial reports data that was produced alongside an error.
func (f *OutputFormatter) Partial(data any, err error) error {
	return f.emit("partial", data, err.Error())
}

func (f *OutputFormatter) Error(err error) error {
	return f.emit("error", nil, err.Error())
}

func (f *OutputFormatter) emit(status string, data any, msg string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: status, Data: data, Error: msg})
	}

	if data != nil {
		if t, ok := data.(texter); ok {
			fmt.Fprint(f.Writer, t.Text())
		} else {
			fmt.Fprintln(f.Writer, data)
		}
	}
	if msg != "" {
		fmt.Fprintf(f.Writer, "Error: %s\n", msg)
	}
	return nil
}
