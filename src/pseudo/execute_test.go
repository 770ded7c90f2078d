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
package pseudo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-pseudonymizer/src/digest"
	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/salt"
	testutils "github.com/yugabyte/yb-pseudonymizer/test/utils"
)

func newJob(t *testing.T, inputPath string, s string, column string) Job {
	job, err := NewJob(inputPath, salt.Salt(s), column)
	testutils.FatalIfError(t, err)
	return job
}

type recordingProgress struct {
	phases    []State
	total     int64
	done      int
	succeeded *bool
}

func (p *recordingProgress) SetPhase(s State) { p.phases = append(p.phases, s) }
func (p *recordingProgress) SetTotal(n int64) { p.total = n }
func (p *recordingProgress) IncrBy(n int)     { p.done += n }
func (p *recordingProgress) Complete(ok bool) { p.succeeded = &ok }

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	testutils.FatalIfError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPatientsScenario(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteXlsx(t, dir, "patients.xlsx",
		[]string{"identifier", "age"},
		[][]string{{"p1", "40"}, {"", "52"}})

	var observed []State
	progress := &recordingProgress{}
	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"),
		Options{Observer: func(s State) { observed = append(observed, s) }, Progress: progress})

	require.True(t, res.Succeeded(), "result: %+v", res)
	assert.Equal(t, filepath.Join(dir, "patients_pseudo.xlsx"), res.OutputPath)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, []State{LOADING, VALIDATING, TRANSFORMING, WRITING, SUCCEEDED}, observed)
	assert.Equal(t, observed, progress.phases)
	assert.Equal(t, int64(2), progress.total)
	assert.Equal(t, 2, progress.done)
	require.NotNil(t, progress.succeeded)
	assert.True(t, *progress.succeeded)

	rows := testutils.ReadXlsx(t, res.OutputPath)
	assert.Equal(t, [][]string{
		{"age", "DIGEST"},
		{"40", digest.Digest("p1", "abc")},
		{"52", digest.Digest("", "abc")},
	}, rows)
}

func TestColumnMatchingIsNormalised(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "visits.csv",
		[]string{"Visit Date", " Patient (ID) "},
		[][]string{{"2024-01-01", "A-1"}, {"2024-01-02", "A-2"}})

	res := Execute(context.Background(), newJob(t, input, "pepper", "PATIENT ID"), Options{})
	require.True(t, res.Succeeded(), "result: %+v", res)

	rows := testutils.ReadCsv(t, res.OutputPath)
	assert.Equal(t, []string{"visit_date", "DIGEST"}, rows[0])
	assert.Equal(t, digest.Digest("A-2", "pepper"), rows[2][1])
}

func TestMissingColumnLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"order", "amount"}, [][]string{{"o1", "10"}})

	var observed []State
	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"),
		Options{Observer: func(s State) { observed = append(observed, s) }, LogFilePath: "/tmp/x.log"})

	assert.Equal(t, FAILED, res.State)
	assert.Equal(t, errs.MISSING_COLUMN, res.ErrorKind)
	assert.Equal(t, "No 'identifier' column exists in file!", res.Message)
	assert.Equal(t, []State{LOADING, VALIDATING, FAILED}, observed)
	assert.NoFileExists(t, filepath.Join(dir, "orders_pseudo.csv"))
	assert.Equal(t, []string{"orders.csv"}, listDir(t, dir))
}

func TestMissingColumnDoesNotTouchPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"order"}, [][]string{{"o1"}})
	previous := testutils.WriteFile(t, dir, "orders_pseudo.csv", "from an earlier run\n")

	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"), Options{})
	assert.Equal(t, errs.MISSING_COLUMN, res.ErrorKind)
	content, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "from an earlier run\n", string(content))
}

func TestLoadFailuresAreClassified(t *testing.T) {
	dir := t.TempDir()
	var observed []State
	res := Execute(context.Background(), newJob(t, filepath.Join(dir, "gone.xlsx"), "abc", "identifier"),
		Options{Observer: func(s State) { observed = append(observed, s) }, LogFilePath: "/var/log/pseudo.log"})

	assert.Equal(t, errs.NOT_FOUND, res.ErrorKind)
	assert.Equal(t, []State{LOADING, FAILED}, observed)
	assert.Equal(t, GENERIC_FAILURE_MESSAGE+" /var/log/pseudo.log", res.Message)
	assert.NotContains(t, res.Message, "gone.xlsx")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "gone.xlsx")

	res = Execute(context.Background(), newJob(t, testutils.WriteFile(t, dir, "notes.txt", "x"), "abc", "x"), Options{})
	assert.Equal(t, errs.UNSUPPORTED_FORMAT, res.ErrorKind)
	assert.Equal(t, GENERIC_FAILURE_MESSAGE, res.Message)
}

func TestRowOrderPreservedWithParallelDigesting(t *testing.T) {
	dir := t.TempDir()
	var rows [][]string
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("id-%04d", i)
		if i%17 == 0 {
			id = ""
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i), id})
	}
	input := testutils.WriteCsv(t, dir, "big.csv", []string{"seq", "identifier"}, rows)

	progress := &recordingProgress{}
	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"),
		Options{ParallelJobs: 8, ChunkSize: 7, Progress: progress})
	require.True(t, res.Succeeded(), "result: %+v", res)
	assert.Equal(t, len(rows), res.RowCount)
	assert.Equal(t, len(rows), progress.done)

	out := testutils.ReadCsv(t, res.OutputPath)
	require.Len(t, out, len(rows)+1)
	assert.Equal(t, []string{"seq", "DIGEST"}, out[0])
	for i, row := range rows {
		assert.Equal(t, []string{row[0], digest.Digest(row[1], "abc")}, out[i+1], "row %d", i)
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	csvInput := testutils.WriteCsv(t, dir, "a.csv", []string{"identifier", "x"}, [][]string{{"1", "a"}, {"2", "b"}})
	xlsxInput := testutils.WriteXlsx(t, dir, "b.xlsx", []string{"identifier", "x"}, [][]string{{"1", "a"}, {"2", "b"}})

	first := Execute(context.Background(), newJob(t, csvInput, "abc", "identifier"), Options{})
	require.True(t, first.Succeeded())
	firstBytes, err := os.ReadFile(first.OutputPath)
	require.NoError(t, err)
	second := Execute(context.Background(), newJob(t, csvInput, "abc", "identifier"), Options{ParallelJobs: 4, ChunkSize: 1})
	require.True(t, second.Succeeded())
	secondBytes, err := os.ReadFile(second.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, firstBytes, secondBytes)

	first = Execute(context.Background(), newJob(t, xlsxInput, "abc", "identifier"), Options{})
	require.True(t, first.Succeeded())
	firstRows := testutils.ReadXlsx(t, first.OutputPath)
	second = Execute(context.Background(), newJob(t, xlsxInput, "abc", "identifier"), Options{})
	require.True(t, second.Succeeded())
	assert.Equal(t, firstRows, testutils.ReadXlsx(t, second.OutputPath))
}

func TestExistingOutputIsReplaced(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"identifier"}, [][]string{{"o1"}})
	testutils.WriteFile(t, dir, "orders_pseudo.csv", "stale,content,with,many,columns\n1,2,3,4,5\n6,7,8,9,10\n")

	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"), Options{})
	require.True(t, res.Succeeded())
	assert.Equal(t, [][]string{{"DIGEST"}, {digest.Digest("o1", "abc")}}, testutils.ReadCsv(t, res.OutputPath))
	assert.ElementsMatch(t, []string{"orders.csv", "orders_pseudo.csv"}, listDir(t, dir))
}

func TestWriteFailureLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"identifier"}, [][]string{{"o1"}})
	// a non-empty directory sits where the artifact should go
	blocker := filepath.Join(dir, "orders_pseudo.csv")
	require.NoError(t, os.Mkdir(blocker, 0755))
	testutils.WriteFile(t, blocker, "keep.txt", "x")

	var observed []State
	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"),
		Options{Observer: func(s State) { observed = append(observed, s) }})
	assert.Equal(t, errs.WRITE_FAILURE, res.ErrorKind)
	assert.Equal(t, []State{LOADING, VALIDATING, TRANSFORMING, WRITING, FAILED}, observed)
	assert.ElementsMatch(t, []string{"orders.csv", "orders_pseudo.csv"}, listDir(t, dir))
	assert.FileExists(t, filepath.Join(blocker, "keep.txt"))
}

func TestCancelledJobWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"identifier"}, [][]string{{"o1"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Execute(ctx, newJob(t, input, "abc", "identifier"), Options{})
	assert.Equal(t, FAILED, res.State)
	assert.Equal(t, errs.UNEXPECTED_FAILURE, res.ErrorKind)
	assert.True(t, strings.Contains(res.Err.Error(), "job cancelled"))
	assert.Equal(t, []string{"orders.csv"}, listDir(t, dir))
}

func TestDigestColumnClash(t *testing.T) {
	dir := t.TempDir()
	input := testutils.WriteCsv(t, dir, "orders.csv", []string{"identifier", "Digest"}, [][]string{{"o1", "x"}})

	res := Execute(context.Background(), newJob(t, input, "abc", "identifier"), Options{})
	assert.Equal(t, errs.UNEXPECTED_FAILURE, res.ErrorKind)

	res = Execute(context.Background(), newJob(t, input, "abc", "identifier"), Options{DigestColumn: "HASHED_ID"})
	require.True(t, res.Succeeded())
	assert.Equal(t, []string{"digest", "HASHED_ID"}, testutils.ReadCsv(t, res.OutputPath)[0])
}

func TestNewJob(t *testing.T) {
	_, err := NewJob("a.xlsx", salt.Salt(""), "identifier")
	assert.Equal(t, errs.EMPTY, errs.KindOf(err))

	a := newJob(t, "a.xlsx", "abc", " identifier ")
	b := newJob(t, "a.xlsx", "abc", "identifier")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "identifier", a.TargetColumn)
}

func TestTransitions(t *testing.T) {
	assert.True(t, isAllowedTransition(CREATED, LOADING))
	assert.True(t, isAllowedTransition(LOADING, VALIDATING))
	assert.True(t, isAllowedTransition(WRITING, SUCCEEDED))
	assert.True(t, isAllowedTransition(TRANSFORMING, FAILED))
	assert.True(t, isAllowedTransition(CREATED, FAILED))
	assert.False(t, isAllowedTransition(LOADING, TRANSFORMING))
	assert.False(t, isAllowedTransition(VALIDATING, LOADING))
	assert.False(t, isAllowedTransition(SUCCEEDED, FAILED))
	assert.False(t, isAllowedTransition(FAILED, LOADING))
	assert.Equal(t, "Transforming", TRANSFORMING.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestFailureIsLoggedWithKindStageAndLocation(t *testing.T) {
	hook := testutils.CaptureLogs(t)
	dir := t.TempDir()
	path := testutils.WriteCsv(t, dir, "visits.csv", []string{"name"}, [][]string{{"x"}})

	job := newJob(t, path, "abc", "identifier")
	res := Execute(context.Background(), job, Options{})
	require.Equal(t, FAILED, res.State)

	msgs := testutils.LoggedMessages(hook, log.ErrorLevel)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], job.ID)
	assert.Contains(t, msgs[0], "kind=MissingColumn")
	assert.Contains(t, msgs[0], "stage=validating")
	assert.Contains(t, msgs[0], "location=execute.go:")

	infos := testutils.LoggedMessages(hook, log.InfoLevel)
	assert.Contains(t, infos, fmt.Sprintf("job %s: Validating -> Failed", job.ID))
}
