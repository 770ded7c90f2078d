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
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	goerrors "github.com/go-errors/errors"
)

const utf8BOM = "\ufeff"

type csvHandler struct{}

func newCsvReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // width is checked against the header later
	return reader
}

// readHeader reads exactly one record.
func (csvHandler) readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerrors.Wrap(err, 0)
	}
	defer f.Close()

	header, err := newCsvReader(f).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoHeader
		}
		return nil, goerrors.Wrap(err, 0)
	}
	return stripBOM(header), nil
}

func (csvHandler) readAll(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, 0)
	}
	defer f.Close()

	records, err := newCsvReader(f).ReadAll()
	if err != nil {
		return nil, nil, goerrors.Wrap(err, 0)
	}
	if len(records) == 0 {
		return nil, nil, errNoHeader
	}
	return stripBOM(records[0]), records[1:], nil
}

func (csvHandler) write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return goerrors.Wrap(err, 0)
	}
	if err := cw.WriteAll(rows); err != nil {
		return goerrors.Wrap(err, 0)
	}
	return nil
}

func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header
}
