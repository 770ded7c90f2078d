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

package salt

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
)

type Source string

const (
	TEXT_FILE        Source = "text"
	CERTIFICATE_FILE Source = "certificate"
)

// number of leading characters hidden by Masked
const maskedPrefixLen = 4

// Salt is the secret mixed into every digest. String() never reveals it, so
// a Salt can be passed to loggers safely; use Value() to get the raw text.
type Salt string

func (s Salt) Value() string {
	return string(s)
}

func (s Salt) IsEmpty() bool {
	return s == ""
}

// Masked hides the first four characters behind '*' and keeps the length.
func (s Salt) Masked() string {
	r := []rune(string(s))
	n := min(maskedPrefixLen, len(r))
	return strings.Repeat("*", n) + string(r[n:])
}

func (s Salt) String() string {
	return strings.Repeat("*", len([]rune(string(s))))
}

// Load resolves a salt from path according to source.
func Load(source Source, path string) (Salt, error) {
	switch source {
	case TEXT_FILE:
		return LoadFromTextFile(path)
	case CERTIFICATE_FILE:
		return LoadFromCertificateFile(path)
	default:
		return "", errs.NewPseudoError(errs.UNEXPECTED_FAILURE, errs.STAGE_SALT, path,
			goerrors.Errorf("unknown salt source %q", source))
	}
}

// LoadFromTextFile uses the first line of the file, minus its line
// terminator, verbatim as the salt.
func LoadFromTextFile(path string) (Salt, error) {
	f, err := openSaltFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errs.NewPseudoError(errs.UNREADABLE, errs.STAGE_SALT, path, goerrors.Wrap(err, 0))
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", errs.NewPseudoError(errs.EMPTY, errs.STAGE_SALT, path,
			goerrors.Errorf("first line of salt file is empty"))
	}
	log.Infof("loaded salt from text file %q", path)
	return Salt(line), nil
}

// pemBlockRe matches one PEM entry including the line terminator after its
// END line. The fingerprint is taken over exactly these bytes.
var pemBlockRe = regexp.MustCompile(`(?s)-----BEGIN ([^\r\n]+?)-----\r?\n.+?\r?\n-----END ([^\r\n]+?)-----(?:\r?\n)?`)

var pemBeginMarker = []byte("-----BEGIN ")

// LoadFromCertificateFile uses the hex SHA-1 fingerprint of the first PEM
// entry in the file as the salt.
func LoadFromCertificateFile(path string) (Salt, error) {
	f, err := openSaltFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", errs.NewPseudoError(errs.UNREADABLE, errs.STAGE_SALT, path, goerrors.Wrap(err, 0))
	}

	raw, err := firstPEMEntry(path, data)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	log.Infof("loaded salt from certificate file %q", path)
	return Salt(hex.EncodeToString(sum[:])), nil
}

func firstPEMEntry(path string, data []byte) ([]byte, error) {
	if !bytes.Contains(data, pemBeginMarker) {
		return nil, errs.NewPseudoError(errs.EMPTY, errs.STAGE_SALT, path,
			goerrors.Errorf("no PEM entries found"))
	}
	m := pemBlockRe.FindSubmatchIndex(data)
	if m == nil {
		return nil, errs.NewPseudoError(errs.PARSE_ERROR, errs.STAGE_SALT, path,
			goerrors.Errorf("PEM entry is not terminated"))
	}
	raw := data[m[0]:m[1]]
	beginType, endType := string(data[m[2]:m[3]]), string(data[m[4]:m[5]])
	if beginType != endType {
		return nil, errs.NewPseudoError(errs.PARSE_ERROR, errs.STAGE_SALT, path,
			goerrors.Errorf("PEM entry BEGIN %q does not match END %q", beginType, endType))
	}
	if block, _ := pem.Decode(raw); block == nil {
		return nil, errs.NewPseudoError(errs.PARSE_ERROR, errs.STAGE_SALT, path,
			goerrors.Errorf("PEM entry %q cannot be decoded", beginType))
	}
	return raw, nil
}

func openSaltFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.NewPseudoError(errs.NOT_FOUND, errs.STAGE_SALT, path, goerrors.Wrap(err, 0))
		}
		return nil, errs.NewPseudoError(errs.UNREADABLE, errs.STAGE_SALT, path, goerrors.Wrap(err, 0))
	}
	if info.IsDir() {
		return nil, errs.NewPseudoError(errs.UNREADABLE, errs.STAGE_SALT, path,
			goerrors.Errorf("%q is a directory", path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewPseudoError(errs.UNREADABLE, errs.STAGE_SALT, path, goerrors.Wrap(err, 0))
	}
	return f, nil
}
