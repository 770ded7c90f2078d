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
package lockfile

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/yugabyte/yb-pseudonymizer/test/utils"
)

func TestForInput(t *testing.T) {
	dir := t.TempDir()
	l, err := ForInput(filepath.Join(dir, "patients.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".patients_pseudo.lck"), l.Path())
}

func TestLockUnlock(t *testing.T) {
	dir := t.TempDir()
	l, err := ForInput(filepath.Join(dir, "patients.csv"))
	require.NoError(t, err)

	require.NoError(t, l.Lock())
	pid, err := l.GetCmdPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, l.Unlock())
	_, err = os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLockHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	// the parent process of the test binary is alive and is not us
	path := testutils.WriteFile(t, dir, ".patients_pseudo.lck", fmt.Sprintf("%d\n", os.Getppid()))

	err := NewLockfile(path).Lock()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestLockTakesOverLockOfExitedProcess(t *testing.T) {
	dir := t.TempDir()
	// a finished child process leaves a PID that nothing is running under
	child := exec.Command(os.Args[0], "-test.run=^$")
	require.NoError(t, child.Run())
	path := testutils.WriteFile(t, dir, ".patients_pseudo.lck", fmt.Sprintf("%d\n", child.Process.Pid))

	l := NewLockfile(path)
	require.NoError(t, l.Lock())
	pid, err := l.GetCmdPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	require.NoError(t, l.Unlock())
}

func TestLockTakesOverCorruptLockfile(t *testing.T) {
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, ".patients_pseudo.lck", "not a pid\n")

	l := NewLockfile(path)
	require.NoError(t, l.Lock())
	require.NoError(t, l.Unlock())
}
