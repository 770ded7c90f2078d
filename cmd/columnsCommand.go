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
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
	"github.com/yugabyte/yb-pseudonymizer/src/utils"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the columns of a spreadsheet as pseudonymize will match them",
	Long: `Reads only the header row of the input file and prints the column names after
normalisation (trimmed, lower case, spaces replaced by '_', parentheses removed).`,

	Run: func(cmd *cobra.Command, args []string) {
		err := validateInputFileFlag()
		if err != nil {
			utils.ErrExit("%v", err)
		}
		columns, err := tabular.Probe(inputFile)
		if err != nil {
			utils.ErrExit("%s", describeError(err))
		}
		displayColumns(inputFile, columns)
	},
}

func displayColumns(path string, columns tabular.ColumnCandidateList) {
	size := ""
	if info, err := os.Stat(path); err == nil {
		size = fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
	}
	color.Cyan("Columns of %s%s\n", displayPath(path), size)
	table := uitable.New()
	addHeader(table, "#", "COLUMN")
	for i, col := range columns {
		table.AddRow(i+1, col)
	}
	fmt.Print("\n")
	fmt.Println(table)
	fmt.Print("\n")
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	registerInputFileFlag(columnsCmd)
}
