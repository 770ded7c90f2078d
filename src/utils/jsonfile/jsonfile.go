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
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yugabyte/yb-pseudonymizer/src/utils"
)

// JsonFile persists one value of T as indented JSON. Every write goes to a
// temp file in the same directory which is then renamed over FilePath, so a
// reader never sees a half written document.
type JsonFile[T any] struct {
	sync.Mutex
	FilePath string
}

func NewJsonFile[T any](filePath string) *JsonFile[T] {
	return &JsonFile[T]{FilePath: filePath}
}

func (j *JsonFile[T]) Create(obj *T) error {
	j.Lock()
	defer j.Unlock()
	return j.write(obj)
}

func (j *JsonFile[T]) Read() (*T, error) {
	j.Lock()
	defer j.Unlock()
	return j.read()
}

func (j *JsonFile[T]) read() (*T, error) {
	bs, err := os.ReadFile(j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", j.FilePath, err)
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("file %s is empty", j.FilePath)
	}
	obj := new(T)
	err = json.Unmarshal(bs, obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	return obj, nil
}

func (j *JsonFile[T]) Update(fn func(*T)) error {
	j.Lock()
	defer j.Unlock()
	var obj *T
	var err error
	if utils.FileOrFolderExists(j.FilePath) {
		obj, err = j.read()
		if err != nil {
			return err
		}
	} else {
		obj = new(T)
	}

	fn(obj)
	return j.write(obj)
}

func (j *JsonFile[T]) write(obj *T) error {
	bs, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.FilePath), "."+filepath.Base(j.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", j.FilePath, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	_, err = tmp.Write(bs)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err != nil {
		return fmt.Errorf("write file %s: %w", j.FilePath, err)
	}
	err = os.Rename(tmp.Name(), j.FilePath)
	if err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp.Name(), j.FilePath, err)
	}
	return nil
}

func (j *JsonFile[T]) Delete() error {
	j.Lock()
	defer j.Unlock()
	return os.Remove(j.FilePath)
}
