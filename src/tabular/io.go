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
	"errors"
	"io"
	"io/fs"

	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
)

var errNoHeader = errors.New("file has no header row")

// Probe discovers the normalised column names of path from its header row
// alone; the data rows are never materialised.
func Probe(path string) (ColumnCandidateList, error) {
	format, err := DetectFormat(path, errs.STAGE_PROBE)
	if err != nil {
		return nil, err
	}
	raw, err := handlerFor(format).readHeader(path)
	if err != nil {
		return nil, classifyReadErr(errs.STAGE_PROBE, path, err)
	}
	columns, err := NormalizeHeader(raw)
	if err != nil {
		return nil, errs.NewPseudoError(errs.CORRUPT_FILE, errs.STAGE_PROBE, path, err)
	}
	log.Infof("probed %d columns in %q: %v", len(columns), path, columns)
	return ColumnCandidateList(columns), nil
}

// Load reads the whole first sheet (or the whole csv) as text, normalising
// the header exactly like Probe.
func Load(path string) (*Dataset, error) {
	format, err := DetectFormat(path, errs.STAGE_LOADING)
	if err != nil {
		return nil, err
	}
	raw, rows, err := handlerFor(format).readAll(path)
	if err != nil {
		return nil, classifyReadErr(errs.STAGE_LOADING, path, err)
	}
	columns, err := NormalizeHeader(raw)
	if err != nil {
		return nil, errs.NewPseudoError(errs.CORRUPT_FILE, errs.STAGE_LOADING, path, err)
	}
	for i, row := range rows {
		rows[i], err = fitRow(row, len(columns), i+2)
		if err != nil {
			return nil, errs.NewPseudoError(errs.CORRUPT_FILE, errs.STAGE_LOADING, path, err)
		}
	}
	log.Infof("loaded %d rows x %d columns from %q", len(rows), len(columns), path)
	return &Dataset{Format: format, Columns: columns, Rows: rows}, nil
}

// Write serialises ds in its own container format.
func Write(w io.Writer, ds *Dataset) error {
	return handlerFor(ds.Format).write(w, ds.Columns, ds.Rows)
}

// fitRow pads short rows with empty cells. Values beyond the header are an
// error since they would have no column to live in.
func fitRow(row []string, width int, lineNum int) ([]string, error) {
	if len(row) > width {
		if !isEmptyRow(row[width:]) {
			return nil, goerrors.Errorf("row %d has %d cells but the header has %d columns", lineNum, len(row), width)
		}
		return row[:width], nil
	}
	for len(row) < width {
		row = append(row, "")
	}
	return row, nil
}

func classifyReadErr(stage string, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.NewPseudoError(errs.NOT_FOUND, stage, path, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.NewPseudoError(errs.UNREADABLE, stage, path, err)
	default:
		return errs.NewPseudoError(errs.CORRUPT_FILE, stage, path, err)
	}
}
