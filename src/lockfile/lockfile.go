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
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nightlyone/lockfile"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-pseudonymizer/src/tabular"
)

var ErrLocked = errors.New("output is locked by another yb-pseudonymizer process")

// Lockfile guards the output of one input file, so that two processes never
// write the same <base>_pseudo artifact at once.
type Lockfile struct {
	fpath    string
	cmdPID   int
	lockfile lockfile.Lockfile
}

func NewLockfile(fpath string) *Lockfile {
	return &Lockfile{fpath: fpath, cmdPID: -1}
}

// ForInput returns the lock for the output derived from inputPath:
// <dir>/.<base>_pseudo.lck next to the output itself.
func ForInput(inputPath string) (*Lockfile, error) {
	abs, err := filepath.Abs(tabular.OutputPath(inputPath))
	if err != nil {
		return nil, fmt.Errorf("resolving output path of %q: %w", inputPath, err)
	}
	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	return NewLockfile(filepath.Join(filepath.Dir(abs), "."+stem+".lck")), nil
}

func (l *Lockfile) Path() string {
	return l.fpath
}

func (l *Lockfile) GetCmdPID() (int, error) {
	if l.cmdPID != -1 {
		return l.cmdPID, nil
	}

	bytes, err := os.ReadFile(l.fpath)
	if err != nil {
		return -1, fmt.Errorf("failed to read lockfile %q: %w", l.fpath, err)
	}
	l.cmdPID, err = strconv.Atoi(strings.Trim(string(bytes), " \n"))
	if err != nil {
		return -1, fmt.Errorf("failed to parse PID from lockfile %q: %w", l.fpath, err)
	}
	return l.cmdPID, nil
}

// Lock takes the lock. A lockfile left behind by a process that is no longer
// running, or holding no valid PID, is taken over.
func (l *Lockfile) Lock() error {
	var err error
	l.lockfile, err = lockfile.New(l.fpath)
	if err != nil {
		return fmt.Errorf("failed to create lockfile %q: %w", l.fpath, err)
	}

	err = l.lockfile.TryLock()
	switch {
	case err == nil:
		log.Infof("acquired lock %q", l.fpath)
		return nil
	case errors.Is(err, lockfile.ErrBusy):
		pid, _ := l.GetCmdPID()
		return fmt.Errorf("%w (pid %d, lockfile %q)", ErrLocked, pid, l.fpath)
	default:
		return fmt.Errorf("unable to lock %q: %w", l.fpath, err)
	}
}

func (l *Lockfile) Unlock() error {
	err := l.lockfile.Unlock()
	if err != nil {
		return fmt.Errorf("unable to unlock %q: %w", l.fpath, err)
	}
	log.Infof("released lock %q", l.fpath)
	return nil
}
