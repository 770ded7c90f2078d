/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package errs

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	goerrors "github.com/go-errors/errors"
)

type ErrorKind string

const (
	NOT_FOUND          ErrorKind = "NotFound"
	UNREADABLE         ErrorKind = "Unreadable"
	CORRUPT_FILE       ErrorKind = "CorruptFile"
	PARSE_ERROR        ErrorKind = "ParseError"
	UNSUPPORTED_FORMAT ErrorKind = "UnsupportedFormat"
	EMPTY              ErrorKind = "Empty"
	MISSING_COLUMN     ErrorKind = "MissingColumn"
	WRITE_FAILURE      ErrorKind = "WriteFailure"
	UNEXPECTED_FAILURE ErrorKind = "UnexpectedFailure"
)

const (
	// stages
	STAGE_SALT         = "salt"
	STAGE_PROBE        = "probe"
	STAGE_LOADING      = "loading"
	STAGE_VALIDATING   = "validating"
	STAGE_TRANSFORMING = "transforming"
	STAGE_WRITING      = "writing"
)

// PseudoError is the single error type surfaced by the salt, probe and job
// layers. The kind is what callers branch on; the rest is for the log.
type PseudoError struct {
	kind     ErrorKind
	stage    string
	path     string
	err      error
	location string
}

func (e *PseudoError) Error() string {
	if e.path == "" {
		return fmt.Sprintf("%s: stage=%s: %s", e.kind, e.stage, e.err.Error())
	}
	return fmt.Sprintf("%s: stage=%s: %q: %s", e.kind, e.stage, e.path, e.err.Error())
}

func (e *PseudoError) Kind() ErrorKind {
	return e.kind
}

func (e *PseudoError) Stage() string {
	return e.stage
}

func (e *PseudoError) Path() string {
	return e.path
}

// Location is the file:line (and function) where the underlying error was
// first raised, or where it was classified if it carried no stack.
func (e *PseudoError) Location() string {
	return e.location
}

func (e *PseudoError) Unwrap() error {
	return e.err
}

// NewPseudoError classifies err. The originating location is taken from the
// first go-errors stack found in err's chain, else from the caller.
func NewPseudoError(kind ErrorKind, stage string, path string, err error) *PseudoError {
	if err == nil {
		err = errors.New(string(kind))
	}
	var stacked *goerrors.Error
	if !errors.As(err, &stacked) {
		stacked = goerrors.Wrap(err, 1)
	}
	return &PseudoError{
		kind:     kind,
		stage:    stage,
		path:     path,
		err:      err,
		location: frameLocation(stacked),
	}
}

// KindOf returns the kind of the first PseudoError in err's chain.
// Anything unclassified is an UNEXPECTED_FAILURE.
func KindOf(err error) ErrorKind {
	var pe *PseudoError
	if errors.As(err, &pe) {
		return pe.kind
	}
	return UNEXPECTED_FAILURE
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// frameLocation resolves the first frame of e's stack. runtime.CallersFrames
// expands inlined calls, so the function named is the one that raised e.
func frameLocation(e *goerrors.Error) string {
	callers := e.Callers()
	if len(callers) == 0 {
		return "unknown"
	}
	f, _ := runtime.CallersFrames(callers).Next()
	if f.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d %s", filepath.Base(f.File), f.Line, shortFuncName(f.Function))
}

// shortFuncName drops the import path and package from a qualified function
// name: ".../src/errs.(*T).m" becomes "(*T).m".
func shortFuncName(name string) string {
	name = name[strings.LastIndex(name, "/")+1:]
	if i := strings.Index(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
