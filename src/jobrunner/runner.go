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
package jobrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"

	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
)

var ErrJobInFlight = errors.New("a pseudonymization job is already running")

// Runner executes one job at a time, each on its own freshly started
// goroutine, so the caller's goroutine is never blocked by a job.
type Runner struct {
	mu      sync.Mutex
	opts    pseudo.Options
	current *Handle
}

// NewRunner returns a runner that executes every job with opts. An Observer
// in opts is still called, after the handle has recorded the transition.
func NewRunner(opts pseudo.Options) *Runner {
	return &Runner{opts: opts}
}

// Submit starts job in the background and returns its handle, or
// ErrJobInFlight if the previous job has not reached a terminal state.
func (r *Runner) Submit(ctx context.Context, job pseudo.Job) (*Handle, error) {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return nil, ErrJobInFlight
	}
	h := newHandle(job)
	r.current = h
	r.mu.Unlock()

	opts := r.opts
	userObserver := opts.Observer
	opts.Observer = func(s pseudo.State) {
		h.record(s)
		if userObserver != nil {
			userObserver(s)
		}
	}

	log.Infof("job %s: submitted for %q", job.ID, job.InputPath)
	go r.run(ctx, h, opts, userObserver)
	return h, nil
}

func (r *Runner) run(ctx context.Context, h *Handle, opts pseudo.Options, userObserver func(pseudo.State)) {
	var result pseudo.Result
	var pc panics.Catcher
	startedAt := time.Now()
	pc.Try(func() {
		result = pseudo.Execute(ctx, h.job, opts)
	})
	if recovered := pc.Recovered(); recovered != nil {
		log.Errorf("job %s: panic while in state %s: %v\n%s", h.job.ID, h.State(), recovered.Value, recovered.Stack)
		result = panicResult(h, recovered.AsError(), opts.LogFilePath, startedAt)
		if !h.State().IsTerminal() {
			h.record(pseudo.FAILED)
			if userObserver != nil {
				userObserver(pseudo.FAILED)
			}
		}
	}
	h.result = result

	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
	close(h.transitions)
	close(h.done)
}

func panicResult(h *Handle, err error, logFilePath string, startedAt time.Time) pseudo.Result {
	pe := errs.NewPseudoError(errs.UNEXPECTED_FAILURE, h.State().String(), h.job.InputPath, err)
	return pseudo.Result{
		JobID:      h.job.ID,
		State:      pseudo.FAILED,
		InputPath:  h.job.InputPath,
		ErrorKind:  pe.Kind(),
		Message:    pseudo.UserMessage(pe.Kind(), h.job, logFilePath),
		Err:        pe,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
}

// Handle is the caller's view of a submitted job.
type Handle struct {
	job         pseudo.Job
	state       atomic.Int32
	transitions chan pseudo.State
	done        chan struct{}
	result      pseudo.Result
}

// a job makes at most five transitions, so recording never blocks
const transitionBufferSize = 8

func newHandle(job pseudo.Job) *Handle {
	return &Handle{
		job:         job,
		transitions: make(chan pseudo.State, transitionBufferSize),
		done:        make(chan struct{}),
	}
}

func (h *Handle) record(s pseudo.State) {
	h.state.Store(int32(s))
	h.transitions <- s
}

func (h *Handle) ID() string {
	return h.job.ID
}

func (h *Handle) Job() pseudo.Job {
	return h.job
}

func (h *Handle) State() pseudo.State {
	return pseudo.State(h.state.Load())
}

// Transitions yields every state the job enters, in order, and is closed
// once the job is terminal.
func (h *Handle) Transitions() <-chan pseudo.State {
	return h.transitions
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job is terminal and returns its result.
func (h *Handle) Wait() pseudo.Result {
	<-h.done
	return h.result
}

// Result returns the result without blocking; ok is false while the job
// is still running.
func (h *Handle) Result() (pseudo.Result, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return pseudo.Result{}, false
	}
}
