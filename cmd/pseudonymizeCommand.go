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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/vbauerster/mpb/v8"

	"github.com/yugabyte/yb-pseudonymizer/src/digest"
	"github.com/yugabyte/yb-pseudonymizer/src/errs"
	"github.com/yugabyte/yb-pseudonymizer/src/jobrunner"
	"github.com/yugabyte/yb-pseudonymizer/src/lockfile"
	"github.com/yugabyte/yb-pseudonymizer/src/pseudo"
	pbreporter "github.com/yugabyte/yb-pseudonymizer/src/reporter/pb"
	"github.com/yugabyte/yb-pseudonymizer/src/session"
	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
	"github.com/yugabyte/yb-pseudonymizer/src/utils"
)

// Column used when the user is not asked to choose one.
const DEFAULT_TARGET_COLUMN = "identifier"

var (
	targetColumn string
	digestColumn string
	parallelJobs int
	reportFile   string
)

var pseudonymizeCmd = &cobra.Command{
	Use:     "pseudonymize",
	Aliases: []string{"pseudonymise"},
	Short:   "Replace one column of a spreadsheet with its salted digest",
	Long: `Writes <name>_pseudo.<ext> next to the input file. The output has every input
column except the chosen one, followed by a digest column holding
blake2s(value + salt) for each row. An existing output file is replaced.

Without --column the columns of the file are listed and one can be chosen;
with --yes the column 'identifier' is used.`,

	Run: func(cmd *cobra.Command, args []string) {
		res, err := runPseudonymize(cmd.Context())
		if err != nil {
			utils.ErrExit("%s", describeError(err))
		}
		if !res.Succeeded() {
			utils.ErrExit("%s", color.RedString(res.Message))
		}
	},
}

func runPseudonymize(ctx context.Context) (pseudo.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	err := validateInputFileFlag()
	if err != nil {
		return pseudo.Result{}, err
	}

	sess, err := loadSalt(session.New())
	if err != nil {
		return pseudo.Result{}, err
	}
	fmt.Printf("Your salt term is %s\n", sess.Salt().Masked())

	sess, err = sess.SelectInput(inputFile)
	if err != nil {
		return pseudo.Result{}, err
	}
	sess, err = chooseTargetColumn(sess)
	if err != nil {
		return pseudo.Result{}, err
	}

	outputPath := tabular.OutputPath(inputFile)
	if utils.FileOrFolderExists(outputPath) &&
		!utils.AskPrompt(fmt.Sprintf("Output file %s already exists. Replace it", displayPath(outputPath))) {
		return pseudo.Result{}, goerrors.Errorf("aborting, output file %s was left as it is", displayPath(outputPath))
	}

	lock, err := lockfile.ForInput(inputFile)
	if err != nil {
		return pseudo.Result{}, err
	}
	err = lock.Lock()
	if err != nil {
		return pseudo.Result{}, err
	}
	releaseLock := sync.OnceFunc(func() {
		if err := lock.Unlock(); err != nil {
			log.Warnf("%v", err)
		}
	})
	defer releaseLock()

	var progress *mpb.Progress
	if !disablePb {
		progress = mpb.New()
	}
	pbr := pbreporter.NewJobPB(progress, filepath.Base(inputFile), disablePb)
	runner := jobrunner.NewRunner(pseudo.Options{
		DigestColumn: digestColumn,
		ParallelJobs: parallelJobs,
		Progress:     pbr,
		LogFilePath:  logFilePath,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess, h, err := sess.Submit(ctx, runner)
	if err != nil {
		return pseudo.Result{}, err
	}
	// on SIGINT/SIGTERM stop the job and let it remove its temp file before
	// exiting; deferred calls do not run on that path, so the lock goes here too
	atexit.Register(func() {
		cancel()
		<-h.Done()
		releaseLock()
	})

	report := newJobReport(h.Job(), sess)
	if reportFile != "" {
		report.create(reportFile)
	}

	for state := range h.Transitions() {
		if disablePb {
			fmt.Printf("%s: %s\n", h.Job().InputPath, state)
		}
	}
	res := h.Wait()
	// a job that panicked never completed its bar, and mpb waits for every bar
	if !pbr.IsComplete() {
		pbr.Complete(res.Succeeded())
	}
	if progress != nil {
		progress.Wait()
	}
	if reportFile != "" {
		report.finish(reportFile, res)
	}

	displayResult(res)
	return res, nil
}

// chooseTargetColumn applies --column, or asks the user to pick one of the
// probed columns.
func chooseTargetColumn(sess session.Session) (session.Session, error) {
	if targetColumn != "" {
		return selectColumn(sess, targetColumn)
	}
	if utils.DoNotPrompt {
		return selectColumn(sess, DEFAULT_TARGET_COLUMN)
	}
	defaultColumn := ""
	if sess.Columns().Contains(DEFAULT_TARGET_COLUMN) {
		defaultColumn = DEFAULT_TARGET_COLUMN
	}
	chosen, err := utils.AskChoice("Choose the column that you would like to have pseudonymised",
		sess.Columns(), defaultColumn)
	if err != nil {
		return sess, err
	}
	return selectColumn(sess, chosen)
}

func selectColumn(sess session.Session, name string) (session.Session, error) {
	next, err := sess.SelectColumn(name)
	if err != nil {
		log.Errorf("selecting column %q of %q: %v", name, sess.InputPath(), err)
		job := pseudo.Job{InputPath: sess.InputPath(), TargetColumn: name}
		return sess, goerrors.New(pseudo.UserMessage(errs.MISSING_COLUMN, job, logFilePath))
	}
	log.Infof("target column %q", next.TargetColumn())
	return next, nil
}

func displayResult(res pseudo.Result) {
	const keyWidth = 10
	if !res.Succeeded() {
		printSection("Pseudonymization failed",
			failureLine(res.Message),
		)
		return
	}
	size := ""
	if info, err := os.Stat(res.OutputPath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	printSection("Pseudonymization complete",
		successLine(fmt.Sprintf("%s rows pseudonymized", humanize.Comma(int64(res.RowCount)))),
		formatKeyValue("Input:", displayPath(res.InputPath), keyWidth),
		formatKeyValue("Output:", fmt.Sprintf("%s %s", displayPath(res.OutputPath), hintLine(size)), keyWidth),
		formatKeyValue("Took:", res.Duration().Round(time.Millisecond).String(), keyWidth),
		"",
		hintLine("Keep the salt: the same salt links these digests to future files."),
		hintLine("Logs: ")+commandLine(displayPath(logFilePath)),
	)
}

func init() {
	rootCmd.AddCommand(pseudonymizeCmd)
	registerSaltFlags(pseudonymizeCmd)
	registerInputFileFlag(pseudonymizeCmd)

	pseudonymizeCmd.Flags().StringVar(&targetColumn, "column", "",
		"column to pseudonymize, matched after normalisation (default: choose interactively)")
	pseudonymizeCmd.Flags().StringVar(&digestColumn, "digest-column", digest.DEFAULT_COLUMN,
		"header of the column holding the digests")
	pseudonymizeCmd.Flags().IntVar(&parallelJobs, "parallel-jobs", 1,
		"number of goroutines digesting rows")
	pseudonymizeCmd.Flags().StringVar(&reportFile, "report-file", "",
		"write a JSON report of the job to this file")
}
