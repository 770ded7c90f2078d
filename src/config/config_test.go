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
package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	defer func() { LogLevel = INFO }()

	cases := map[string]log.Level{
		"info":    log.InfoLevel,
		" DEBUG ": log.DebugLevel,
		"Trace":   log.TraceLevel,
		"error":   log.ErrorLevel,
	}
	for in, expected := range cases {
		LogLevel = in
		lvl, err := Level()
		require.NoError(t, err, in)
		assert.Equal(t, expected, lvl, in)
	}

	LogLevel = "debug"
	_, _ = Level()
	assert.True(t, IsLogLevelDebugOrBelow())

	LogLevel = "verbose"
	_, err := Level()
	assert.ErrorContains(t, err, "invalid log level: verbose")
	assert.False(t, IsLogLevelDebugOrBelow())
}
