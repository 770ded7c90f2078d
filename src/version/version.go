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
	"fmt"
	"runtime/debug"
)

const (
	// This constant must be updated on every release.
	PSEUDONYMIZER_VERSION = "1.0.0"

	// @Refer: https://icinga.com/blog/2022/05/25/embedding-git-commit-information-in-go-binaries/
	GIT_COMMIT_HASH = "$Format:%H$"
)

func GitCommitHash() string {
	if len(GIT_COMMIT_HASH) == 40 {
		// Substitution has happened.
		return GIT_COMMIT_HASH
	}
	return ""
}

// Info renders the version block printed by the version command and
// written at the top of every log file.
func Info() string {
	return info(GitCommitHash(), readBuildSettings())
}

func readBuildSettings() []debug.BuildSetting {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return bi.Settings
}

func info(commitHash string, settings []debug.BuildSetting) string {
	versionInfo := fmt.Sprintf("VERSION=%s\n", PSEUDONYMIZER_VERSION)
	if commitHash != "" {
		versionInfo += fmt.Sprintf("GIT_COMMIT_HASH=%s\n", commitHash)
	}
	for _, setting := range settings {
		if setting.Key == "vcs.revision" && commitHash == "" {
			versionInfo += fmt.Sprintf("GIT_COMMIT_HASH=%s\n", setting.Value)
		}
		if setting.Key == "vcs.time" {
			versionInfo += fmt.Sprintf("LAST_COMMIT_DATE=%s\n", setting.Value)
		}
	}
	return versionInfo
}
