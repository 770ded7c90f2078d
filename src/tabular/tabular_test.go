//go:build unit

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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	testutils "github.com/yugabyte/yb-pseudonymizer/test/utils"
)

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"identifier":         "identifier",
		"  Identifier ":      "identifier",
		"Patient ID":         "patient_id",
		"Weight (kg)":        "weight_kg",
		"DATE OF BIRTH":      "date_of_birth",
		"already_normalised": "already_normalised",
		"((Nested)) Parens":  "nested_parens",
		"Tab\tInside":        "tab\tinside",
		"Ünïcode Name":       "ünïcode_name",
		"":                   "",
	}
	for raw, expected := range cases {
		once := NormalizeColumnName(raw)
		assert.Equal(t, expected, once, "normalising %q", raw)
		assert.Equal(t, once, NormalizeColumnName(once), "normalising %q twice", raw)
	}
}

func TestNormalizeHeader(t *testing.T) {
	cols, err := NormalizeHeader([]string{"Identifier", "", "Age (years)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"identifier", "unnamed_1", "age_years"}, cols)

	again, err := NormalizeHeader(cols)
	require.NoError(t, err)
	assert.Equal(t, cols, again)

	_, err = NormalizeHeader([]string{"Name", " name "})
	assert.Error(t, err)
}

func TestColumnCandidateListContains(t *testing.T) {
	l := ColumnCandidateList{"identifier", "age_years"}
	assert.True(t, l.Contains("IDENTIFIER"))
	assert.True(t, l.Contains(" Age (years) "))
	assert.False(t, l.Contains("name"))
	assert.True(t, ColumnCandidateList{}.IsEmpty())
}

func TestOutputPath(t *testing.T) {
	cases := map[string]string{
		filepath.Join("data", "orders.xlsx"):                  filepath.Join("data", "orders_pseudo.xlsx"),
		filepath.Join("data", "my.xlsx.files", "orders.xlsx"): filepath.Join("data", "my.xlsx.files", "orders_pseudo.xlsx"),
		"patients.CSV": "patients_pseudo.CSV",
		filepath.Join("data", "archive.2024.xlsx"): filepath.Join("data", "archive.2024_pseudo.xlsx"),
	}
	for in, expected := range cases {
		assert.Equal(t, expected, OutputPath(in), "output path for %q", in)
	}
}

func TestProbeXlsx(t *testing.T) {
	path := testutils.WriteXlsx(t, t.TempDir(), "patients.xlsx",
		[]string{" Identifier", "Age (Years)", "Home Town"},
		[][]string{{"p1", "40", "Leeds"}, {"p2", "52", "York"}})

	cols, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, ColumnCandidateList{"identifier", "age_years", "home_town"}, cols)
}

func TestXlsxHeaderBelowBlankRows(t *testing.T) {
	dir := t.TempDir()
	// an empty header leaves row 1 blank, so the table starts on row 2
	path := testutils.WriteXlsx(t, dir, "offset.xlsx", []string{},
		[][]string{{"Identifier", "Age"}, {"p1", "40"}, {"p2", "52"}})

	cols, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, ColumnCandidateList{"identifier", "age"}, cols)

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string(cols), ds.Columns)
	assert.Equal(t, [][]string{{"p1", "40"}, {"p2", "52"}}, ds.Rows)

	blank := testutils.WriteXlsx(t, dir, "blank.xlsx", []string{}, nil)
	_, err = Probe(blank)
	assert.Error(t, err)
	_, err = Load(blank)
	assert.Error(t, err)
}

func TestProbeCsvReadsOnlyHeader(t *testing.T) {
	// the third line is not valid csv; only a full load should notice
	content := "Identifier,Age\np1,40\np2,\"52\n"
	path := testutils.WriteFile(t, t.TempDir(), "patients.csv", content)

	cols, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, ColumnCandidateList{"identifier", "age"}, cols)

	_, err = Load(path)
	assert.Equal(t, errs.CORRUPT_FILE, errs.KindOf(err))
}

func TestProbeStripsByteOrderMark(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "bom.csv", "\ufeffIdentifier,Age\np1,40\n")
	cols, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, ColumnCandidateList{"identifier", "age"}, cols)
}

func TestProbeErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		path string
		kind errs.ErrorKind
	}{
		{"missing file", filepath.Join(dir, "missing.xlsx"), errs.NOT_FOUND},
		{"directory", dir, errs.UNREADABLE},
		{"unknown extension", testutils.WriteFile(t, dir, "notes.txt", "a,b\n"), errs.UNSUPPORTED_FORMAT},
		{"legacy excel extension", testutils.WriteFile(t, dir, "old.xls", "a,b\n"), errs.UNSUPPORTED_FORMAT},
		{"text disguised as xlsx", testutils.WriteFile(t, dir, "text.xlsx", "identifier,age\np1,40\n"), errs.UNSUPPORTED_FORMAT},
		{"binary garbage as xlsx", testutils.WriteFile(t, dir, "garbage.xlsx", "\x00\x01\x02\x03garbage\xff\xfe"), errs.CORRUPT_FILE},
		{"empty csv", testutils.WriteFile(t, dir, "empty.csv", ""), errs.CORRUPT_FILE},
		{"duplicate columns", testutils.WriteFile(t, dir, "dups.csv", "Name,NAME\na,b\n"), errs.CORRUPT_FILE},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Probe(tc.path)
			require.Error(t, err)
			assert.Equal(t, tc.kind, errs.KindOf(err))
		})
	}
}

func TestLoadXlsxKeepsCellsAsText(t *testing.T) {
	path := testutils.WriteXlsx(t, t.TempDir(), "ids.xlsx",
		[]string{"Identifier", "Age", "Note"},
		[][]string{
			{"0012345678901234567", "40", ""},
			{"", "52", "x"},
			{"p3", "", ""},
		})

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, XLSX, ds.Format)
	assert.Equal(t, []string{"identifier", "age", "note"}, ds.Columns)
	require.Equal(t, 3, ds.RowCount())
	assert.Equal(t, []string{"0012345678901234567", "40", ""}, ds.Rows[0])
	assert.Equal(t, []string{"", "52", "x"}, ds.Rows[1])
	assert.Equal(t, []string{"p3", "", ""}, ds.Rows[2])
	assert.Equal(t, 0, ds.ColumnIndex(" IDENTIFIER "))
	assert.Equal(t, -1, ds.ColumnIndex("name"))
	assert.Equal(t, []string{"40", "52", ""}, ds.ColumnValues(1))
}

func TestLoadCsvPadsShortRows(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "short.csv", "a,b,c\n1\n4,5,6\n7,8,9,\n")
	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "", ""}, {"4", "5", "6"}, {"7", "8", "9"}}, ds.Rows)

	path = testutils.WriteFile(t, t.TempDir(), "wide.csv", "a,b\n1,2,3\n")
	_, err = Load(path)
	assert.Equal(t, errs.CORRUPT_FILE, errs.KindOf(err))
}

func TestWriteThenLoad(t *testing.T) {
	for _, format := range []Format{XLSX, CSV} {
		t.Run(string(format), func(t *testing.T) {
			ds := &Dataset{
				Format:  format,
				Columns: []string{"age", "DIGEST"},
				Rows:    [][]string{{"40", "d1"}, {"", "d2"}, {"007", "d3"}},
			}
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, ds))

			path := filepath.Join(t.TempDir(), "out."+string(format))
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"age", "digest"}, loaded.Columns)
			assert.Equal(t, ds.Rows, loaded.Rows)
		})
	}
}
