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
package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123abcd"},
		{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		{Key: "GOOS", Value: "linux"},
	}
	assert.Equal(t, "VERSION=1.0.0\nGIT_COMMIT_HASH=0123abcd\nLAST_COMMIT_DATE=2024-05-01T10:00:00Z\n", info("", settings))

	// a substituted hash wins over the vcs setting
	hash := "ffffffffffffffffffffffffffffffffffffffff"
	assert.Equal(t, "VERSION=1.0.0\nGIT_COMMIT_HASH="+hash+"\nLAST_COMMIT_DATE=2024-05-01T10:00:00Z\n", info(hash, settings))

	assert.Equal(t, "VERSION=1.0.0\n", info("", nil))
}

func TestGitCommitHashUnsubstituted(t *testing.T) {
	assert.Equal(t, "", GitCommitHash())
}
