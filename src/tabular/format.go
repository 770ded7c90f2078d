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
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
)

type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

const (
	xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipMime  = "application/zip"
	binMime  = "application/octet-stream"
	textMime = "text/plain"
)

var formatByExtension = map[string]Format{
	".xlsx": XLSX,
	".csv":  CSV,
}

// SupportedExtensions is what a file picker should filter on.
func SupportedExtensions() []string {
	return []string{".xlsx", ".csv"}
}

// accepts reports whether sniffed content is plausible for the format.
// Zip or unrecognised binary content is let through for xlsx so that a
// damaged workbook is reported as corrupt by the parser rather than as
// unsupported. Every type descends from octet-stream, so that one is only
// matched exactly.
func (f Format) accepts(m *mimetype.MIME) bool {
	var allowed []string
	switch f {
	case XLSX:
		if m.Is(binMime) {
			return true
		}
		allowed = []string{xlsxMime, zipMime}
	case CSV:
		allowed = []string{textMime}
	}
	for ; m != nil; m = m.Parent() {
		for _, a := range allowed {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

// DetectFormat resolves the container format of path from its extension and
// checks the content agrees.
func DetectFormat(path string, stage string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errs.NewPseudoError(errs.NOT_FOUND, stage, path, goerrors.Wrap(err, 0))
		}
		return "", errs.NewPseudoError(errs.UNREADABLE, stage, path, goerrors.Wrap(err, 0))
	}
	if info.IsDir() {
		return "", errs.NewPseudoError(errs.UNREADABLE, stage, path, goerrors.Errorf("%q is a directory", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formatByExtension[ext]
	if !ok {
		return "", errs.NewPseudoError(errs.UNSUPPORTED_FORMAT, stage, path,
			goerrors.Errorf("unsupported file extension %q, expected one of %v", ext, SupportedExtensions()))
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", errs.NewPseudoError(errs.UNREADABLE, stage, path, goerrors.Wrap(err, 0))
	}
	if !format.accepts(mtype) {
		return "", errs.NewPseudoError(errs.UNSUPPORTED_FORMAT, stage, path,
			goerrors.Errorf("content of %q is %s, not %s", filepath.Base(path), mtype.String(), format))
	}
	log.Debugf("detected %s (%s) for %q", format, mtype.String(), path)
	return format, nil
}

// formatHandler is implemented once per container format.
type formatHandler interface {
	readHeader(path string) ([]string, error)
	readAll(path string) (header []string, rows [][]string, err error)
	write(w io.Writer, header []string, rows [][]string) error
}

func handlerFor(f Format) formatHandler {
	switch f {
	case XLSX:
		return xlsxHandler{}
	case CSV:
		return csvHandler{}
	default:
		panic("unknown format " + string(f))
	}
}
