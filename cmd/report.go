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
package cmd

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
	"github.com/yugabyte/yb-pseudonymizer/src/session"
	"github.com/yugabyte/yb-pseudonymizer/src/utils/jsonfile"
	"github.com/yugabyte/yb-pseudonymizer/src/version"
)

// jobReport is what --report-file holds. It never contains the salt.
type jobReport struct {
	JobID        string     `json:"job_id"`
	InputFile    string     `json:"input_file"`
	OutputFile   string     `json:"output_file,omitempty"`
	TargetColumn string     `json:"target_column"`
	DigestColumn string     `json:"digest_column"`
	SaltFile     string     `json:"salt_file"`
	RowCount     int        `json:"row_count"`
	State        string     `json:"state"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Version      string     `json:"yb_pseudonymizer_version"`
}

func newJobReport(job pseudo.Job, sess session.Session) *jobReport {
	return &jobReport{
		JobID:        job.ID,
		InputFile:    job.InputPath,
		TargetColumn: job.TargetColumn,
		DigestColumn: digestColumn,
		SaltFile:     sess.SaltPath(),
		State:        pseudo.CREATED.String(),
		StartedAt:    time.Now(),
		Version:      version.PSEUDONYMIZER_VERSION,
	}
}

// create writes the report as soon as the job is submitted. A report that
// cannot be written is logged and does not fail the job.
func (r *jobReport) create(path string) {
	err := jsonfile.NewJsonFile[jobReport](path).Create(r)
	if err != nil {
		log.Errorf("writing job report: %v", err)
	}
}

func (r *jobReport) finish(path string, res pseudo.Result) {
	err := jsonfile.NewJsonFile[jobReport](path).Update(func(report *jobReport) {
		report.State = res.State.String()
		report.OutputFile = res.OutputPath
		report.RowCount = res.RowCount
		report.ErrorKind = string(res.ErrorKind)
		report.ErrorMessage = res.Message
		report.StartedAt = res.StartedAt
		finishedAt := res.FinishedAt
		report.FinishedAt = &finishedAt
	})
	if err != nil {
		log.Errorf("updating job report: %v", err)
	}
}
