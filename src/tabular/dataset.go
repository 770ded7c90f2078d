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
package tabular

import (
	"path/filepath"
	"strings"
)

// OUTPUT_SUFFIX marks the pseudonymised artifact next to its input.
const OUTPUT_SUFFIX = "_pseudo"

// Dataset is a fully loaded table. Every cell is text and every row has
// exactly len(Columns) cells.
type Dataset struct {
	Format  Format
	Columns []string
	Rows    [][]string
}

func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of name (compared after normalisation)
// or -1.
func (d *Dataset) ColumnIndex(name string) int {
	name = NormalizeColumnName(name)
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnValues copies out the cells of column idx in row order.
func (d *Dataset) ColumnValues(idx int) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[idx]
	}
	return values
}

// OutputPath derives the artifact path from the parsed extension of
// inputPath: dir/orders.xlsx -> dir/orders_pseudo.xlsx. Only the final
// extension is considered, so ".xlsx" elsewhere in the path is left alone.
func OutputPath(inputPath string) string {
	dir, base := filepath.Split(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+OUTPUT_SUFFIX+ext)
}
