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
package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	goerrors "github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
)

var DoNotPrompt bool

// promptInput is where answers to prompts are read from.
var promptInput = bufio.NewReader(os.Stdin)

func SetPromptInput(r io.Reader) {
	if r == nil {
		r = os.Stdin
	}
	promptInput = bufio.NewReader(r)
}

func readAnswer() (string, error) {
	line, err := promptInput.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func AskPrompt(args ...string) bool {
	if DoNotPrompt {
		return true
	}
	fmt.Printf("%s? [Y/N]: ", strings.Join(args, " "))

	input, err := readAnswer()
	if err != nil {
		log.Warnf("reading prompt answer: %v", err)
		return false
	}
	input = strings.ToUpper(input)
	return input == "Y" || input == "YES"
}

// AskChoice lists options and asks for one of them by number or by name.
// With DoNotPrompt set, or on an empty answer, defaultOption is returned if
// it is one of options.
func AskChoice(question string, options []string, defaultOption string) (string, error) {
	if len(options) == 0 {
		return "", goerrors.Errorf("no options to choose from")
	}
	defaultIdx := -1
	for i, o := range options {
		if o == defaultOption {
			defaultIdx = i
		}
	}
	if DoNotPrompt {
		if defaultIdx == -1 {
			return "", goerrors.Errorf("%q is not one of %v", defaultOption, options)
		}
		return defaultOption, nil
	}

	fmt.Println(question)
	for i, o := range options {
		fmt.Printf("  %d) %s\n", i+1, o)
	}
	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if defaultIdx != -1 {
			fmt.Printf("Enter a number [%d]: ", defaultIdx+1)
		} else {
			fmt.Printf("Enter a number: ")
		}
		answer, err := readAnswer()
		if err != nil {
			return "", fmt.Errorf("reading choice: %w", err)
		}
		if answer == "" && defaultIdx != -1 {
			return defaultOption, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if o == answer {
				return o, nil
			}
		}
		fmt.Printf("%q is not a valid choice\n", answer)
	}
	return "", goerrors.Errorf("no valid choice after %d attempts", maxAttempts)
}

func FileOrFolderExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		} else {
			panic(err)
		}
	} else {
		return true
	}
}
