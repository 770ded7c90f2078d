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
package testutils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

// === assertion helper functions
func FatalIfError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v", err)
	}
}

func AssertEqualStringSlices(t *testing.T, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("Mismatch in slice length. Expected: %v, Actual: %v", expected, actual)
	}

	expected = append([]string(nil), expected...)
	actual = append([]string(nil), actual...)
	sort.Strings(expected)
	sort.Strings(actual)
	assert.Equal(t, expected, actual)
}

// === fixture helpers
func WriteFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	FatalIfError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteXlsx writes header and rows as plain string cells on Sheet1.
func WriteXlsx(t *testing.T, dir string, name string, header []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	all := append([][]string{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			FatalIfError(t, err)
			FatalIfError(t, f.SetCellStr("Sheet1", cell, v))
		}
	}
	path := filepath.Join(dir, name)
	FatalIfError(t, f.SaveAs(path))
	return path
}

// ReadXlsx returns every row of the first sheet, padded to the header width.
func ReadXlsx(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	FatalIfError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0], excelize.Options{RawCellValue: true})
	FatalIfError(t, err)
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows
}

func WriteCsv(t *testing.T, dir string, name string, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	FatalIfError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	FatalIfError(t, w.Write(header))
	FatalIfError(t, w.WriteAll(rows))
	return path
}

func ReadCsv(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	FatalIfError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	FatalIfError(t, err)
	return records
}
