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
package session

import (
	"context"
	"fmt"

	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/jobrunner"
	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
	"github.com/yugabyte/yb-pseudonymizer/src/salt"
	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
)

// Session holds what the user has chosen so far: a salt, an input file, the
// columns probed from it and the column to pseudonymize. Every mutation
// returns a new Session; the receiver is left as it was.
type Session struct {
	salt         salt.Salt
	saltPath     string
	inputPath    string
	columns      tabular.ColumnCandidateList
	targetColumn string
	active       *jobrunner.Handle
}

// Actions reports which user actions are currently enabled.
type Actions struct {
	ChooseSalt bool
	ChooseFile bool
	Run        bool
}

func New() Session {
	return Session{}
}

func (s Session) Salt() salt.Salt {
	return s.salt
}

func (s Session) SaltPath() string {
	return s.saltPath
}

func (s Session) InputPath() string {
	return s.inputPath
}

func (s Session) Columns() tabular.ColumnCandidateList {
	return s.columns
}

func (s Session) TargetColumn() string {
	return s.targetColumn
}

// Active returns the handle of the last submitted job, or nil.
func (s Session) Active() *jobrunner.Handle {
	return s.active
}

func (s Session) jobRunning() bool {
	if s.active == nil {
		return false
	}
	_, done := s.active.Result()
	return !done
}

func (s Session) Actions() Actions {
	running := s.jobRunning()
	return Actions{
		ChooseSalt: !running,
		ChooseFile: !running && !s.salt.IsEmpty(),
		Run:        !running && !s.salt.IsEmpty() && s.inputPath != "" && s.targetColumn != "",
	}
}

// LoadSalt replaces the salt. The previous salt and everything chosen after
// it are dropped before the new source is read, so a failed load leaves the
// session without a salt.
func (s Session) LoadSalt(source salt.Source, path string) (Session, error) {
	if s.jobRunning() {
		return s, jobrunner.ErrJobInFlight
	}
	next := Session{active: s.active}
	loaded, err := salt.Load(source, path)
	if err != nil {
		log.Errorf("loading salt from %s file %q: %v", source, path, err)
		return next, err
	}
	next.salt = loaded
	next.saltPath = path
	log.Infof("salt loaded from %s file %q", source, path)
	return next, nil
}

// SelectInput probes path for its columns and preselects the first one.
// On failure the input and its columns are cleared; the salt is kept.
func (s Session) SelectInput(path string) (Session, error) {
	if s.jobRunning() {
		return s, jobrunner.ErrJobInFlight
	}
	if s.salt.IsEmpty() {
		return s, goerrors.Errorf("a salt must be loaded before choosing an input file")
	}
	next := s
	next.inputPath = ""
	next.columns = nil
	next.targetColumn = ""

	columns, err := tabular.Probe(path)
	if err != nil {
		log.Errorf("probing %q: %v", path, err)
		return next, err
	}
	next.inputPath = path
	next.columns = columns
	if !columns.IsEmpty() {
		next.targetColumn = columns[0]
	}
	log.Infof("data file loaded %q: columns %v", path, []string(columns))
	return next, nil
}

// SelectColumn sets the target column. name is matched after
// normalisation and stored in its normalised form.
func (s Session) SelectColumn(name string) (Session, error) {
	if s.inputPath == "" {
		return s, goerrors.Errorf("an input file must be chosen before selecting a column")
	}
	normalized := tabular.NormalizeColumnName(name)
	if !s.columns.Contains(normalized) {
		return s, fmt.Errorf("column %q is not one of %v", name, []string(s.columns))
	}
	next := s
	next.targetColumn = normalized
	return next, nil
}

// Submit hands the current selection to runner as a new job.
func (s Session) Submit(ctx context.Context, runner *jobrunner.Runner) (Session, *jobrunner.Handle, error) {
	if !s.Actions().Run {
		return s, nil, goerrors.Errorf("cannot run: salt, input file and column must all be chosen and no job may be running")
	}
	job, err := pseudo.NewJob(s.inputPath, s.salt, s.targetColumn)
	if err != nil {
		return s, nil, err
	}
	h, err := runner.Submit(ctx, job)
	if err != nil {
		return s, nil, err
	}
	next := s
	next.active = h
	return next, h, nil
}
