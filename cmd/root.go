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
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-pseudonymizer/src/config"
	"github.com/yugabyte/yb-pseudonymizer/src/utils"
)

var (
	cfgFile   string
	logDir    string
	disablePb bool
)

var rootCmd = &cobra.Command{
	Use:   "yb-pseudonymizer",
	Short: "Replace an identifying column of a spreadsheet with a salted digest",
	Long: `yb-pseudonymizer replaces one identifying column of an .xlsx or .csv file with a
deterministic BLAKE2s digest keyed by a salt. The same identifier and the same salt
always give the same digest, so pseudonymized files can be linked again later, while
the identifier cannot be recovered without the salt.

The salt is either the first line of a text file or the SHA-1 fingerprint of the first
entry of a PEM certificate file.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" {
			return
		}
		loadDotEnv()
		overrides, err := initConfig(cmd)
		if err != nil {
			utils.ErrExit("%v", err)
		}
		err = InitLogging(logDir)
		if err != nil {
			utils.ErrExit("failed to initialise logging: %v", err)
		}
		for _, o := range overrides {
			log.Infof("flag %q set to %q from config key %q", o.FlagName, o.Value, o.ConfigKey)
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	registerCommonGlobalFlags(rootCmd)
}

func registerCommonGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&cfgFile, "config-file", "c", "",
		"path of the config file (default $YB_PSEUDONYMIZER_CONFIG_FILE or ~/yb-pseudonymizer-config.yaml)")

	cmd.PersistentFlags().StringVar(&logDir, "log-dir", ".",
		"directory under which the logs/ folder with the log file is created")

	cmd.PersistentFlags().StringVarP(&config.LogLevel, "log-level", "l", config.INFO,
		"log level for yb-pseudonymizer. Accepted values: (trace, debug, info, warn, error, fatal, panic)")

	cmd.PersistentFlags().BoolVar(&disablePb, "disable-pb", false,
		"disable the progress bar and print job phases as plain lines")

	cmd.PersistentFlags().BoolVarP(&utils.DoNotPrompt, "yes", "y", false,
		"assume answer as yes for all questions; the target column defaults to 'identifier' (default false)")
}

// loadDotEnv reads a .env file from the working directory, so that
// YB_PSEUDONYMIZER_CONFIG_FILE can be set there. Variables already present
// in the environment win.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.ErrExit("failed to load .env file: %v", err)
	}
}
