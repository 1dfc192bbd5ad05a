// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
)

type errorKind int

const (
	internalError errorKind = iota
	unknownOptionError
	invalidOptionValueError
	unknownPersonaError
	invalidModuleKindError
	incompatibleProfileError
	missingResourceError
	acquisitionFailedError
	unsupportedCombinationError
)

var errorKindNames = map[errorKind]string{
	internalError:               "InternalError",
	unknownOptionError:          "UnknownOption",
	invalidOptionValueError:     "InvalidOptionValue",
	unknownPersonaError:         "UnknownPersona",
	invalidModuleKindError:      "InvalidModuleKind",
	incompatibleProfileError:    "IncompatibleProfile",
	missingResourceError:        "MissingResource",
	acquisitionFailedError:      "AcquisitionFailed",
	unsupportedCombinationError: "UnsupportedCombination",
}

func (kind errorKind) String() string {
	if name, ok := errorKindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("errorKind(%d)", int(kind))
}

// exitCode maps each kind to its own status. Subprocess failures never
// go through here; they keep the status of the failing tool.
func (kind errorKind) exitCode() int {
	if kind == internalError {
		return 1
	}
	return 64 + int(kind)
}

// Sentinels for errors.Is.
var (
	ErrUnknownOption          error = userError{kind: unknownOptionError}
	ErrInvalidOptionValue     error = userError{kind: invalidOptionValueError}
	ErrUnknownPersona         error = userError{kind: unknownPersonaError}
	ErrInvalidModuleKind      error = userError{kind: invalidModuleKindError}
	ErrIncompatibleProfile    error = userError{kind: incompatibleProfileError}
	ErrMissingResource        error = userError{kind: missingResourceError}
	ErrAcquisitionFailed      error = userError{kind: acquisitionFailedError}
	ErrUnsupportedCombination error = userError{kind: unsupportedCombinationError}
)

type userError struct {
	kind errorKind
	err  string
}

var _ error = userError{}

func (err userError) Error() string {
	return err.err
}

// Is matches any userError of the same kind, so callers can compare
// against the sentinels above.
func (err userError) Is(target error) bool {
	other, ok := target.(userError)
	return ok && other.kind == err.kind
}

func newUserErrorf(kind errorKind, format string, v ...interface{}) userError {
	return userError{kind: kind, err: fmt.Sprintf(format, v...)}
}

func wrapErrorwithSourceLocf(err error, format string, v ...interface{}) error {
	return newErrorwithSourceLocfInternal(2, "%s: %s", fmt.Sprintf(format, v...), err.Error())
}

// Based on the implementation of log.Output
func newErrorwithSourceLocfInternal(skip int, format string, v ...interface{}) error {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file = "???"
		line = 0
	}
	if lastSlash := strings.LastIndex(file, "/"); lastSlash >= 0 {
		file = file[lastSlash+1:]
	}

	return fmt.Errorf("%s:%d: %s", file, line, fmt.Sprintf(format, v...))
}

func errorExitCode(err error) int {
	var uerr userError
	if errors.As(err, &uerr) {
		return uerr.kind.exitCode()
	}
	return internalError.exitCode()
}

func getExitCode(err error) (exitCode int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exiterr *exec.ExitError
	if errors.As(err, &exiterr) {
		if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus(), true
		}
	}
	return 0, false
}

// Splits the result of running a subprocess into its exit status and
// errors that prevented it from running at all.
func wrapSubprocessErrorWithSourceLoc(cmd *command, subprocessErr error) (exitCode int, err error) {
	if subprocessErr == nil {
		return 0, nil
	}
	if exitCode, ok := getExitCode(subprocessErr); ok {
		return exitCode, nil
	}
	if errors.Is(subprocessErr, exec.ErrNotFound) || errors.Is(subprocessErr, fs.ErrNotExist) {
		return 0, newUserErrorf(missingResourceError, "cannot run %s: %s%s",
			cmd.Path, subprocessErr, missingToolHint(cmd.Path))
	}
	return 0, newErrorwithSourceLocfInternal(2, "failed to execute %#v: %s", cmd, subprocessErr)
}

func missingToolHint(path string) string {
	if filepath.Base(path) == "wasm-opt" {
		return fmt.Sprintf("; install binaryen, set %sBINARYEN_LOCATION or pass -sRUN_WASM_OPT=no", envPrefix)
	}
	return fmt.Sprintf("; run 'wasixccenv download-llvm' or set %sLLVM_LOCATION", envPrefix)
}
