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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-pseudonymizer/src/session"
	"github.com/yugabyte/yb-pseudonymizer/src/utils"
)

var saltCmd = &cobra.Command{
	Use:   "salt",
	Short: "Check a salt source and print the masked salt",
	Long: `Reads the salt the same way pseudonymize does and prints it with its first
characters masked, so that a salt file or certificate can be checked before use.`,

	Run: func(cmd *cobra.Command, args []string) {
		sess, err := loadSalt(session.New())
		if err != nil {
			utils.ErrExit("%s", describeError(err))
		}
		printSection("Salt",
			successLine("Salt loaded"),
			formatKeyValue("Source:", displayPath(sess.SaltPath()), 8),
			formatKeyValue("Salt:", fmt.Sprintf("Your salt term is %s", sess.Salt().Masked()), 8),
		)
	},
}

// loadSalt loads the salt named by --salt-file or --cert-file into sess.
func loadSalt(sess session.Session) (session.Session, error) {
	source, path, err := saltSourceFromFlags()
	if err != nil {
		return sess, err
	}
	return sess.LoadSalt(source, path)
}

func init() {
	rootCmd.AddCommand(saltCmd)
	registerSaltFlags(saltCmd)
}
