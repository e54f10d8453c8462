package main

import (
	"errors"

	"github.com/DanielDi/agent-tech-mining/internal/common"
)

// Exit codes
const (
	ExitSuccess         = 0 // Success, including runs where some documents failed
	ExitError           = 1 // Runtime failure (unreadable stores, save errors)
	ExitConfigError     = 2 // Invalid flags, config file or missing API key
	ExitDocumentsFailed = 3 // --strict and at least one document failed
)

// exitError carries a process exit code through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func configError(err error) error { return withExitCode(ExitConfigError, err) }

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var xe *exitError
	if errors.As(err, &xe) {
		return xe.code
	}
	var ae *common.AppError
	if errors.As(err, &ae) && ae.Code == "CONFIG_ERROR" {
		return ExitConfigError
	}
	return ExitError
}
