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
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
)

type DisablePBReporter struct { // progress is only tracked and logged, nothing is drawn
	mu          sync.Mutex
	Phase       pseudo.State
	TotalRows   int64
	CurrentRows int64
	IsCompleted bool
	IsSucceeded bool
}

func newDisablePBReporter() *DisablePBReporter {
	return &DisablePBReporter{}
}

func (pbr *DisablePBReporter) SetPhase(s pseudo.State) {
	pbr.mu.Lock()
	defer pbr.mu.Unlock()
	pbr.Phase = s
	log.Debugf("progress: phase %s", s)
}

func (pbr *DisablePBReporter) SetTotal(total int64) {
	pbr.mu.Lock()
	defer pbr.mu.Unlock()
	if total < 0 {
		pbr.TotalRows = pbr.CurrentRows
	} else {
		pbr.TotalRows = total
	}
}

func (pbr *DisablePBReporter) IncrBy(n int) {
	pbr.mu.Lock()
	defer pbr.mu.Unlock()
	pbr.CurrentRows += int64(n)
	if pbr.TotalRows > 0 && pbr.CurrentRows > pbr.TotalRows {
		pbr.CurrentRows = pbr.TotalRows
	}
}

func (pbr *DisablePBReporter) Complete(succeeded bool) {
	pbr.mu.Lock()
	defer pbr.mu.Unlock()
	if pbr.IsCompleted {
		return
	}
	pbr.IsCompleted = true
	pbr.IsSucceeded = succeeded
	if succeeded {
		pbr.CurrentRows = pbr.TotalRows
	}
}

func (pbr *DisablePBReporter) IsComplete() bool {
	pbr.mu.Lock()
	defer pbr.mu.Unlock()
	return pbr.IsCompleted
}
