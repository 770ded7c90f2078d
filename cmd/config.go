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
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	CONFIG_FILE_ENV_VAR = "YB_PSEUDONYMIZER_CONFIG_FILE"

	// Section shared by every command that takes a salt
	SaltConfigSection = "salt"
)

var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"log-dir", "log-level", "disable-pb", "yes",
)

var allowedSaltConfigKeys = mapset.NewThreadUnsafeSet[string](
	"salt-file", "cert-file",
)

var allowedColumnsConfigKeys = mapset.NewThreadUnsafeSet[string](
	"input-file", "log-level",
)

var allowedPseudonymizeConfigKeys = mapset.NewThreadUnsafeSet[string](
	"input-file", "column", "digest-column", "parallel-jobs", "report-file",
	"salt-file", "cert-file", "disable-pb", "log-level",
)

// Define allowed nested sections
var allowedConfigSections = map[string]mapset.Set[string]{
	SaltConfigSection: allowedSaltConfigKeys,
	"columns":         allowedColumnsConfigKeys,
	"pseudonymize":    allowedPseudonymizeConfigKeys,
	"pseudonymise":    allowedPseudonymizeConfigKeys,
}

// Define mutually exclusive section groups
var aliasCommandsPrefixes = [][]string{
	{"pseudonymize", "pseudonymise"},
}

// Flags that may also be given once under the shared salt section
var saltFlagNames = []string{"salt-file", "cert-file"}

// ConfigFlagOverride represents a CLI flag whose value was set from the config file.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

/*
initConfig initializes the configuration for the given Cobra command.

	It performs the following steps:
	 1. Creates a new Viper instance to isolate config handling for the command.
	 2. Loads the config file if explicitly provided via --config-file, or via YB_PSEUDONYMIZER_CONFIG_FILE,
	    or defaults to ~/yb-pseudonymizer-config.yaml.
	 3. Validates the configuration file for allowed global keys, sections, and section keys.
	 4. Binds Viper config values to Cobra flags, giving priority to command-line flags over config values.

	This setup ensures CLI > Config precedence
*/
func initConfig(cmd *cobra.Command) ([]ConfigFlagOverride, error) {
	v := viper.New()

	// Precedence of which config file to use:
	// CLI Flag > ENV Variable > Default config file in home directory
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if os.Getenv(CONFIG_FILE_ENV_VAR) != "" {
		v.SetConfigFile(os.Getenv(CONFIG_FILE_ENV_VAR))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		// Search config in home directory with name "yb-pseudonymizer-config" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName("yb-pseudonymizer-config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err := validateConfigFile(v)
	if err != nil {
		return nil, err
	}

	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}
	return overrides, nil
}

/*
validateConfigFile checks the loaded configuration for correctness.

	It reports global keys that are not allowed, unknown sections, keys that
	are not allowed in their section, and sections of the same alias group
	used together (e.g. "pseudonymize" and "pseudonymise").
*/
func validateConfigFile(v *viper.Viper) error {
	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])
	invalidSections := mapset.NewThreadUnsafeSet[string]()
	conflictingSections := [][]string{}
	presentSections := mapset.NewThreadUnsafeSet[string]()

	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		if len(parts) == 1 {
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
		} else {
			// For example: "a.b.c" -> section: "a", nestedKey: "b.c"
			section := parts[0]
			nestedKey := strings.Join(parts[1:], ".")
			presentSections.Add(section)

			allowedKeys, ok := allowedConfigSections[section]
			if !ok {
				invalidSections.Add(section)
				continue
			}

			if !allowedKeys.Contains(nestedKey) {
				if _, exists := invalidSectionKeys[section]; !exists {
					invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
				}
				invalidSectionKeys[section].Add(nestedKey)
			}
		}
	}

	for _, group := range aliasCommandsPrefixes {
		used := lo.Filter(group, func(sec string, _ int) bool {
			return presentSections.Contains(sec)
		})
		if len(used) > 1 {
			conflictingSections = append(conflictingSections, used)
		}
	}

	if invalidGlobalKeys.Cardinality() > 0 || len(invalidSectionKeys) > 0 || invalidSections.Cardinality() > 0 || len(conflictingSections) > 0 {
		if invalidGlobalKeys.Cardinality() > 0 {
			fmt.Printf("%s [%s]\n", color.RedString("Invalid global config keys:"), strings.Join(invalidGlobalKeys.ToSlice(), ", "))
		}
		for section, keys := range invalidSectionKeys {
			fmt.Printf("%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), strings.Join(keys.ToSlice(), ", "))
		}
		if invalidSections.Cardinality() > 0 {
			fmt.Printf("%s [%s]\n", color.RedString("Invalid sections:"), strings.Join(invalidSections.ToSlice(), ", "))
		}
		for _, conflict := range conflictingSections {
			fmt.Printf("%s [%s]\n", color.RedString("Only one of the following sections can be used:"), strings.Join(conflict, ", "))
		}
		return fmt.Errorf("found invalid configurations in config file: %s", v.ConfigFileUsed())
	}

	return nil
}

/*
bindCobraFlagsToViper sets every flag the user did not pass on the command line
from the config, looking in this order:
  - <command>.<flag>, where <command> is the command path with spaces replaced by hyphens
    (or whichever alias of it is present in the config)
  - <flag> at the global level
  - salt.<flag> for --salt-file and --cert-file
*/
func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride

	subCmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	subCmdPath = strings.TrimSpace(subCmdPath)
	configKeyPrefix := strings.ReplaceAll(subCmdPath, " ", "-")
	configKeyPrefix = setToAliasPrefixIfSet(configKeyPrefix, v)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return // Skip already-set flags or if an error occurred
		}

		candidates := []string{configKeyPrefix + "." + f.Name, f.Name}
		if lo.Contains(saltFlagNames, f.Name) {
			candidates = append(candidates, SaltConfigSection+"."+f.Name)
		}
		key, found := lo.Find(candidates, func(k string) bool {
			return v.IsSet(k)
		})
		if !found {
			// leave the default or the value set on the command line
			return
		}
		val := v.GetString(key)
		err := cmd.Flags().Set(f.Name, val)
		if err != nil {
			bindErr = err
			return
		}
		overrides = append(overrides, ConfigFlagOverride{
			FlagName:  f.Name,
			ConfigKey: key,
			Value:     val,
		})
	})

	return overrides, bindErr
}

// setToAliasPrefixIfSet returns the member of configKeyPrefix's alias group
// that is present in the config, or configKeyPrefix itself.
func setToAliasPrefixIfSet(configKeyPrefix string, v *viper.Viper) string {
	for _, group := range aliasCommandsPrefixes {
		if lo.Contains(group, configKeyPrefix) {
			for _, sec := range group {
				if v.IsSet(sec) {
					return sec
				}
			}
		}
	}
	return configKeyPrefix
}
