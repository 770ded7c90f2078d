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
package pbreporter

import (
	"github.com/vbauerster/mpb/v8"

	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
)

type JobProgressReporter interface { // pseudo.ProgressReporter plus a check that the bar was closed
	pseudo.ProgressReporter
	IsComplete() bool
}

func NewJobPB(progressContainer *mpb.Progress, jobName string, disablePb bool) JobProgressReporter {
	if disablePb {
		return newDisablePBReporter()
	}
	return newEnablePBReporter(progressContainer, jobName)
}
