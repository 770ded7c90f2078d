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
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/stream"

	"github.com/yugabyte/yb-pseudonymizer/src/digest"
	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
)

const DEFAULT_CHUNK_SIZE = 4096

// ProgressReporter receives phase changes and digested row counts. Calls
// come from the goroutine executing the job, in order.
type ProgressReporter interface {
	SetPhase(state State)
	SetTotal(rows int64)
	IncrBy(rows int)
	Complete(succeeded bool)
}

type Options struct {
	// DigestColumn is the header of the new column; digest.DEFAULT_COLUMN if empty.
	DigestColumn string
	// ParallelJobs is how many goroutines digest row chunks; 1 if < 1.
	ParallelJobs int
	ChunkSize    int
	// Observer sees every state transition in order, terminal one included.
	Observer func(State)
	Progress ProgressReporter
	// LogFilePath is pointed to in user-facing failure messages.
	LogFilePath string
}

func (o Options) withDefaults() Options {
	if o.DigestColumn == "" {
		o.DigestColumn = digest.DEFAULT_COLUMN
	}
	if o.ParallelJobs < 1 {
		o.ParallelJobs = 1
	}
	if o.ParallelJobs > runtime.NumCPU()*4 {
		o.ParallelJobs = runtime.NumCPU() * 4
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = DEFAULT_CHUNK_SIZE
	}
	if o.Progress == nil {
		o.Progress = noopProgress{}
	}
	return o
}

type noopProgress struct{}

func (noopProgress) SetPhase(State) {}
func (noopProgress) SetTotal(int64) {}
func (noopProgress) IncrBy(int)     {}
func (noopProgress) Complete(bool)  {}

var stageOfState = map[State]string{
	CREATED:      errs.STAGE_LOADING,
	LOADING:      errs.STAGE_LOADING,
	VALIDATING:   errs.STAGE_VALIDATING,
	TRANSFORMING: errs.STAGE_TRANSFORMING,
	WRITING:      errs.STAGE_WRITING,
}

type execution struct {
	job   Job
	opts  Options
	state State
}

// Execute runs job to completion on the calling goroutine and never
// returns a non-terminal result. Cancelling ctx stops the job at the next
// chunk boundary or before the output is put in place; the destination is
// never left half written.
func Execute(ctx context.Context, job Job, opts Options) Result {
	e := &execution{job: job, opts: opts.withDefaults(), state: CREATED}
	return e.run(ctx)
}

func (e *execution) run(ctx context.Context) Result {
	res := Result{JobID: e.job.ID, InputPath: e.job.InputPath, StartedAt: time.Now()}
	log.Infof("job %s: starting pseudonymization of %q, target column %q", e.job.ID, e.job.InputPath, e.job.TargetColumn)

	outputPath, rowCount, err := e.steps(ctx)
	res.FinishedAt = time.Now()
	if err != nil {
		return e.fail(res, err)
	}

	e.transition(SUCCEEDED)
	e.opts.Progress.Complete(true)
	res.State = SUCCEEDED
	res.OutputPath = outputPath
	res.RowCount = rowCount
	log.Infof("job %s: completed pseudonymization of %q: %d rows written to %q in %s",
		e.job.ID, e.job.InputPath, rowCount, outputPath, res.Duration())
	return res
}

func (e *execution) steps(ctx context.Context) (string, int, error) {
	e.transition(LOADING)
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	ds, err := tabular.Load(e.job.InputPath)
	if err != nil {
		return "", 0, err
	}

	e.transition(VALIDATING)
	targetIdx, err := e.validate(ds)
	if err != nil {
		return "", 0, err
	}

	e.transition(TRANSFORMING)
	out, err := e.transform(ctx, ds, targetIdx)
	if err != nil {
		return "", 0, err
	}

	e.transition(WRITING)
	outputPath, err := e.write(ctx, out)
	if err != nil {
		return "", 0, err
	}
	return outputPath, out.RowCount(), nil
}

func (e *execution) transition(to State) {
	if !isAllowedTransition(e.state, to) {
		// a programming error, not a data error
		panic(goerrors.Errorf("job %s: disallowed transition %s -> %s", e.job.ID, e.state, to))
	}
	log.Infof("job %s: %s -> %s", e.job.ID, e.state, to)
	e.state = to
	e.opts.Progress.SetPhase(to)
	if e.opts.Observer != nil {
		e.opts.Observer(to)
	}
}

func (e *execution) fail(res Result, err error) Result {
	stage := stageOfState[e.state]
	var pe *errs.PseudoError
	if !errors.As(err, &pe) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = goerrors.Errorf("job cancelled: %w", err)
		}
		pe = errs.NewPseudoError(errs.UNEXPECTED_FAILURE, stage, e.job.InputPath, err)
	}
	log.Errorf("job %s: pseudonymization of %q failed in state %s: kind=%s stage=%s location=%s: %v",
		e.job.ID, e.job.InputPath, e.state, pe.Kind(), pe.Stage(), pe.Location(), err)

	e.transition(FAILED)
	e.opts.Progress.Complete(false)
	res.State = FAILED
	res.ErrorKind = pe.Kind()
	res.Err = pe
	res.Message = UserMessage(pe.Kind(), e.job, e.opts.LogFilePath)
	return res
}

func (e *execution) validate(ds *tabular.Dataset) (int, error) {
	idx := ds.ColumnIndex(e.job.TargetColumn)
	if idx < 0 || e.job.TargetColumn == "" {
		return -1, errs.NewPseudoError(errs.MISSING_COLUMN, errs.STAGE_VALIDATING, e.job.InputPath,
			goerrors.Errorf("column %q not found, file has %v", e.job.TargetColumn, ds.Columns))
	}
	for i, c := range ds.Columns {
		if i != idx && strings.EqualFold(c, tabular.NormalizeColumnName(e.opts.DigestColumn)) {
			return -1, errs.NewPseudoError(errs.UNEXPECTED_FAILURE, errs.STAGE_VALIDATING, e.job.InputPath,
				goerrors.Errorf("digest column %q clashes with existing column %q", e.opts.DigestColumn, c))
		}
	}
	return idx, nil
}

// transform digests the target column chunk by chunk. Chunks may be hashed
// concurrently but their results are stitched back in submission order.
func (e *execution) transform(ctx context.Context, ds *tabular.Dataset, targetIdx int) (*tabular.Dataset, error) {
	hasher := digest.New(e.job.Salt.Value())
	values := ds.ColumnValues(targetIdx)
	n := len(values)
	digests := make([]string, n)
	e.opts.Progress.SetTotal(int64(n))

	s := stream.New().WithMaxGoroutines(e.opts.ParallelJobs)
	for start := 0; start < n; start += e.opts.ChunkSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+e.opts.ChunkSize, n)
		s.Go(func() stream.Callback {
			part := hasher.DigestAll(values[start:end])
			return func() {
				copy(digests[start:end], part)
				e.opts.Progress.IncrBy(end - start)
			}
		})
	}
	s.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(ds.Columns))
	for i, c := range ds.Columns {
		if i != targetIdx {
			columns = append(columns, c)
		}
	}
	columns = append(columns, e.opts.DigestColumn)

	rows := make([][]string, n)
	for r, row := range ds.Rows {
		out := make([]string, 0, len(columns))
		out = append(out, row[:targetIdx]...)
		out = append(out, row[targetIdx+1:]...)
		rows[r] = append(out, digests[r])
	}
	return &tabular.Dataset{Format: ds.Format, Columns: columns, Rows: rows}, nil
}

// write builds the whole artifact in a temp file next to the destination
// and renames it into place only once it is complete.
func (e *execution) write(ctx context.Context, out *tabular.Dataset) (outputPath string, err error) {
	outputPath = tabular.OutputPath(e.job.InputPath)
	writeErr := func(err error) error {
		return errs.NewPseudoError(errs.WRITE_FAILURE, errs.STAGE_WRITING, outputPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return "", writeErr(goerrors.Wrap(err, 0))
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warnf("job %s: removing temp file %q: %v", e.job.ID, tmp.Name(), rmErr)
			}
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := tabular.Write(bw, out); err != nil {
		return "", writeErr(err)
	}
	if err := bw.Flush(); err != nil {
		return "", writeErr(goerrors.Wrap(err, 0))
	}
	if err := tmp.Sync(); err != nil {
		return "", writeErr(goerrors.Wrap(err, 0))
	}
	if err := tmp.Close(); err != nil {
		return "", writeErr(goerrors.Wrap(err, 0))
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", writeErr(goerrors.Wrap(err, 0))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := replaceFile(tmp.Name(), outputPath); err != nil {
		return "", writeErr(err)
	}
	committed = true
	return outputPath, nil
}

// replaceFile moves src over dst. Where rename refuses to overwrite, the old
// artifact is deleted first; it is never merged with the new one.
func replaceFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if _, statErr := os.Stat(dst); statErr != nil {
		return goerrors.Wrap(err, 0)
	}
	if rmErr := os.Remove(dst); rmErr != nil {
		return goerrors.Wrap(rmErr, 0)
	}
	if err := os.Rename(src, dst); err != nil {
		return goerrors.Wrap(err, 0)
	}
	return nil
}
