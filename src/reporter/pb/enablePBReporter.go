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
	"fmt"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
)

type EnablePBReporter struct {
	bar       *mpb.Bar
	phase     atomic.Int32
	completed atomic.Bool
}

func newEnablePBReporter(progressContainer *mpb.Progress, jobName string) *EnablePBReporter {
	pbr := &EnablePBReporter{}
	pbr.phase.Store(int32(pseudo.CREATED))
	pbr.bar = progressContainer.AddBar(int64(0), // mandatory to set total with 0 while AddBar to achieve dynamic total behaviour
		mpb.BarFillerClearOnComplete(),
		mpb.PrependDecorators(
			decor.Name(jobName, decor.WCSyncSpaceR),
			decor.Any(func(decor.Statistics) string {
				return fmt.Sprintf("[%s]", pseudo.State(pbr.phase.Load()))
			}, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.NewPercentage("%.2f", decor.WCSyncSpaceR), "completed",
			),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO), "",
			),
		),
	)
	return pbr
}

func (pbr *EnablePBReporter) SetPhase(s pseudo.State) {
	pbr.phase.Store(int32(s))
}

func (pbr *EnablePBReporter) SetTotal(total int64) {
	pbr.bar.SetTotal(total, false)
}

func (pbr *EnablePBReporter) IncrBy(n int) {
	pbr.bar.IncrBy(n)
}

func (pbr *EnablePBReporter) Complete(succeeded bool) {
	if pbr.completed.Swap(true) {
		return
	}
	if succeeded {
		pbr.bar.SetTotal(-1, true) // total := current
		return
	}
	pbr.bar.Abort(false)
}

func (pbr *EnablePBReporter) IsComplete() bool {
	return pbr.completed.Load()
}
