// Package runner executes external tools. Every call blocks until the child
// exits; a non-zero exit is reported as *ExitError.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is a fully built subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
}

// Argv returns Name followed by Args.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command line for logs, quoting arguments with spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, arg := range c.Argv() {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// ExitError reports a child that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// ExitCode extracts the exit status from err, or -1 when err is not an exit.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// Func adapts a function to Runner.
type Func func(ctx context.Context, cmd Command) error

// Run implements Runner.
func (f Func) Run(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Exec runs commands with os/exec, streaming child output.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec that forwards child output to the terminal.
func NewExec() *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("runner: command name is required")
	}
	child := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	child.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		child.Env = append(os.Environ(), cmd.Env...)
	}
	child.Stdout = e.Stdout
	child.Stderr = e.Stderr
	err := child.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("runner: %s: %w", cmd.Name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: cmd.Name, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("runner: start %s: %w", cmd.Name, err)
}
