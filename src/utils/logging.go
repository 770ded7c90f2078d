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
package utils

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

var (
	// ErrExitErr is the error of the last ErrExit call. Command tests that
	// replace the exit hook read it to report why a command gave up.
	ErrExitErr error

	exitHook = atexit.Exit
)

// SetExitHook replaces what ErrExit calls after printing; nil restores
// atexit.Exit, which runs the registered job and lock cleanup first.
func SetExitHook(h func(code int)) {
	if h == nil {
		exitHook = atexit.Exit
	} else {
		exitHook = h
	}
}

// ErrExit prints the formatted error to stderr and the log, then exits with
// status 1 through the exit hook.
func ErrExit(format string, args ...interface{}) {
	ErrExitErr = fmt.Errorf(format, args...)

	format = strings.Replace(format, "%w", "%s", -1)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	log.Errorf(format+"\n", args...)

	exitHook(1)
}

func PrintAndLog(formatString string, args ...interface{}) {
	log.Infof(formatString, args...)
	if !strings.HasSuffix(formatString, "\n") {
		formatString = formatString + "\n"
	}
	fmt.Printf(formatString, args...)
}
