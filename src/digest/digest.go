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

package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2s"
)

// DEFAULT_COLUMN is the header of the column that carries the digests in
// the pseudonymised artifact.
const DEFAULT_COLUMN = "DIGEST"

// Size is the length in hex characters of every digest.
const Size = blake2s.Size * 2

// Digest returns the lowercase hex BLAKE2s-256 of value followed by salt.
// An empty cell is hashed as the empty string, so it yields the digest of
// the salt alone.
func Digest(value string, salt string) string {
	sum := blake2s.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])
}

// Hasher binds a salt so the row loop only has to pass the cell value.
// It holds no other state and is safe for concurrent use.
type Hasher struct {
	salt string
}

func New(salt string) *Hasher {
	return &Hasher{salt: salt}
}

func (h *Hasher) Digest(value string) string {
	return Digest(value, h.salt)
}

// DigestAll hashes values into a new slice of the same length and order.
func (h *Hasher) DigestAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = h.Digest(v)
	}
	return out
}
