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
	"io"

	goerrors "github.com/go-errors/errors"
	"github.com/xuri/excelize/v2"
)

// Output workbooks always carry a single default sheet.
const xlsxOutputSheet = "Sheet1"

// cells are read as stored, without number formats applied
var rawCells = excelize.Options{RawCellValue: true}

type xlsxHandler struct{}

func openWorkbook(path string) (*excelize.File, string, error) {
	f, err := excelize.OpenFile(path, rawCells)
	if err != nil {
		return nil, "", goerrors.Wrap(err, 0)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, "", goerrors.Errorf("workbook has no sheets")
	}
	return f, sheets[0], nil
}

// readHeader streams the first sheet and stops at its header, the first row
// holding any value. Blank rows above the table are skipped.
func (xlsxHandler) readHeader(path string) ([]string, error) {
	f, sheet, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, goerrors.Wrap(err, 0)
	}
	defer rows.Close()
	for rows.Next() {
		cols, err := rows.Columns(rawCells)
		if err != nil {
			return nil, goerrors.Wrap(err, 0)
		}
		if !isEmptyRow(cols) {
			return cols, nil
		}
	}
	if err := rows.Error(); err != nil {
		return nil, goerrors.Wrap(err, 0)
	}
	return nil, errNoHeader
}

func (xlsxHandler) readAll(path string) ([]string, [][]string, error) {
	f, sheet, err := openWorkbook(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, 0)
	}
	defer rows.Close()

	var header []string
	var data [][]string
	for rows.Next() {
		cols, err := rows.Columns(rawCells)
		if err != nil {
			return nil, nil, goerrors.Wrap(err, 0)
		}
		if header == nil {
			if !isEmptyRow(cols) {
				header = cols
			}
			continue
		}
		data = append(data, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, nil, goerrors.Wrap(err, 0)
	}
	if header == nil {
		return nil, nil, errNoHeader
	}
	return header, trimTrailingEmptyRows(data), nil
}

func (xlsxHandler) write(w io.Writer, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(xlsxOutputSheet)
	if err != nil {
		return goerrors.Wrap(err, 0)
	}
	setRow := func(rowNum int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return sw.SetRow(cell, values)
	}

	if err := setRow(1, header); err != nil {
		return goerrors.Wrap(err, 0)
	}
	for i, row := range rows {
		if err := setRow(i+2, row); err != nil {
			return goerrors.Wrap(err, 0)
		}
	}
	if err := sw.Flush(); err != nil {
		return goerrors.Wrap(err, 0)
	}
	if err := f.Write(w); err != nil {
		return goerrors.Wrap(err, 0)
	}
	return nil
}

// trimTrailingEmptyRows drops rows after the last one holding any value;
// spreadsheets often keep formatted but empty rows at the end of a sheet.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
