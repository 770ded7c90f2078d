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
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"
)

var columnNameReplacer = strings.NewReplacer(" ", "_", "(", "", ")", "")

// NormalizeColumnName trims, lowercases, turns spaces into underscores and
// drops parentheses. Applying it twice gives the same result as once.
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return columnNameReplacer.Replace(name)
}

// NormalizeHeader normalises a raw header row. Blank header cells are named
// after their position so that every column stays addressable.
func NormalizeHeader(raw []string) ([]string, error) {
	names := make([]string, len(raw))
	for i, r := range raw {
		n := NormalizeColumnName(r)
		if n == "" {
			n = fmt.Sprintf("unnamed_%d", i)
		}
		names[i] = n
	}
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, goerrors.Errorf("duplicate column names after normalization: %v", dups)
	}
	return names, nil
}

// ColumnCandidateList holds the normalised column names of a file in file
// order; one of them becomes the target column of a job.
type ColumnCandidateList []string

func (l ColumnCandidateList) Contains(name string) bool {
	return lo.Contains(l, NormalizeColumnName(name))
}

func (l ColumnCandidateList) IsEmpty() bool {
	return len(l) == 0
}
