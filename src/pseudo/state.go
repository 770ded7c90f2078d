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
package pseudo

import "fmt"

type State int

const (
	CREATED State = iota
	LOADING
	VALIDATING
	TRANSFORMING
	WRITING
	SUCCEEDED
	FAILED
)

var stateNames = []string{
	"Created",
	"Loading",
	"Validating",
	"Transforming",
	"Writing",
	"Succeeded",
	"Failed",
}

func (s State) String() string {
	if s < CREATED || s > FAILED {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) IsTerminal() bool {
	return s == SUCCEEDED || s == FAILED
}

// isAllowedTransition encodes the linear job lifecycle: each state moves to
// the next one, and any non-terminal state may fail.
func isAllowedTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == FAILED {
		return true
	}
	return to == from+1
}
