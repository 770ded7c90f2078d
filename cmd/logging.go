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
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yugabyte/yb-pseudonymizer/src/config"
	"github.com/yugabyte/yb-pseudonymizer/src/version"
)

const (
	LOGGER_NAME   = "yb-pseudonymizer"
	LOG_FILE_NAME = "yb-pseudonymizer.log"

	logMaxSizeMB  = 10
	logMaxBackups = 5
)

// logFilePath is where the current process logs, shown to the user in
// failure messages.
var logFilePath string

type MyFormatter struct{}

var levelList = []string{
	"PANIC",
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
	"DEBUG",
	"TRACE",
}

func (mf *MyFormatter) Format(entry *log.Entry) ([]byte, error) {
	level := levelList[int(entry.Level)]
	caller := "-"
	if entry.HasCaller() {
		caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	// Example log line:
	// 2022-03-23 12:16:42 yb-pseudonymizer INFO main.go:27 Logging initialised.
	msg := fmt.Sprintf("%s %s %s %s %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), LOGGER_NAME, level,
		caller, entry.Message)
	return []byte(msg), nil
}

func InitLogging(logDir string) error {
	lvl, err := config.Level()
	if err != nil {
		return err
	}
	logFilePath, err = filepath.Abs(filepath.Join(logDir, "logs", LOG_FILE_NAME))
	if err != nil {
		return fmt.Errorf("resolving log file path: %w", err)
	}

	// logRotator handles scenario where "logs" folder, or the log file does not exist.
	logRotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}
	log.SetOutput(logRotator)
	log.SetLevel(lvl)

	log.SetReportCaller(true)
	log.SetFormatter(&MyFormatter{})
	log.Info("Logging initialised.")
	log.Infof("Args: %v", os.Args)
	log.Infof("\n%s", version.Info())
	return nil
}
