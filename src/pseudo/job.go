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
package pseudo

import (
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/salt"
)

// Job is what gets submitted for execution. It is a value: once created
// none of its fields change, the salt included.
type Job struct {
	ID           string
	InputPath    string
	Salt         salt.Salt
	TargetColumn string
}

func NewJob(inputPath string, s salt.Salt, targetColumn string) (Job, error) {
	if s.IsEmpty() {
		return Job{}, errs.NewPseudoError(errs.EMPTY, errs.STAGE_SALT, inputPath,
			goerrors.Errorf("a job needs a non-empty salt"))
	}
	return Job{
		ID:           uuid.New().String(),
		InputPath:    inputPath,
		Salt:         s,
		TargetColumn: strings.TrimSpace(targetColumn),
	}, nil
}

// Result is the immutable outcome of a job. OutputPath and RowCount are set
// on success; ErrorKind, Message and Err on failure. Message is safe to show
// to end users, Err is the detailed error that went to the log.
type Result struct {
	JobID      string
	State      State
	InputPath  string
	OutputPath string
	RowCount   int
	ErrorKind  errs.ErrorKind
	Message    string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r Result) Succeeded() bool {
	return r.State == SUCCEEDED
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

const GENERIC_FAILURE_MESSAGE = "An exception occurred: details in log file"

// UserMessage turns a failure into text for the end user. Raw error text
// stays in the log.
func UserMessage(kind errs.ErrorKind, job Job, logFilePath string) string {
	if kind == errs.MISSING_COLUMN {
		return fmt.Sprintf("No '%s' column exists in file!", job.TargetColumn)
	}
	if logFilePath == "" {
		return GENERIC_FAILURE_MESSAGE
	}
	return fmt.Sprintf("%s %s", GENERIC_FAILURE_MESSAGE, logFilePath)
}
