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
package cmd

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
	"github.com/yugabyte/yb-pseudonymizer/src/salt"
	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
)

var (
	saltFile  string
	certFile  string
	inputFile string
)

func registerSaltFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&saltFile, "salt-file", "",
		"text file whose first line is the salt")
	cmd.Flags().StringVar(&certFile, "cert-file", "",
		"PEM certificate file (.pem, .crt, .cert); the salt is the SHA-1 fingerprint of its first entry")
}

func registerInputFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputFile, "input-file", "i", "",
		fmt.Sprintf("spreadsheet to read (%s)", strings.Join(tabular.SupportedExtensions(), ", ")))
}

// saltSourceFromFlags returns the one salt source the user asked for.
func saltSourceFromFlags() (salt.Source, string, error) {
	switch {
	case saltFile != "" && certFile != "":
		return "", "", goerrors.Errorf("only one of --salt-file and --cert-file can be used")
	case saltFile != "":
		return salt.TEXT_FILE, saltFile, nil
	case certFile != "":
		return salt.CERTIFICATE_FILE, certFile, nil
	default:
		return "", "", goerrors.Errorf("one of --salt-file or --cert-file is required")
	}
}

func validateInputFileFlag() error {
	if inputFile == "" {
		return goerrors.Errorf(`required flag "input-file" not set`)
	}
	return nil
}

// describeError turns a salt or probe failure into a line for the user.
// Anything unclassified points at the log file instead of echoing raw text.
func describeError(err error) string {
	var pe *errs.PseudoError
	path := ""
	if errors.As(err, &pe) {
		path = pe.Path()
	}
	switch errs.KindOf(err) {
	case errs.NOT_FOUND:
		return fmt.Sprintf("%q does not exist", path)
	case errs.UNREADABLE:
		return fmt.Sprintf("%q cannot be read", path)
	case errs.CORRUPT_FILE:
		return fmt.Sprintf("%q is corrupt or has no header row", path)
	case errs.PARSE_ERROR:
		return fmt.Sprintf("%q is not a valid PEM certificate file", path)
	case errs.UNSUPPORTED_FORMAT:
		return fmt.Sprintf("%q is not a supported file, expected one of %s", path, strings.Join(tabular.SupportedExtensions(), ", "))
	case errs.EMPTY:
		return fmt.Sprintf("%q does not contain a salt", path)
	default:
		if pe == nil {
			// plain usage errors are safe to show as they are
			return err.Error()
		}
		return fmt.Sprintf("%s %s", pseudo.GENERIC_FAILURE_MESSAGE, logFilePath)
	}
}
