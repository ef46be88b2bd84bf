// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"errors"
	"fmt"
)

// ErrTransactionDone is returned when a transaction is used after Commit or
// Rollback.
var ErrTransactionDone = errors.New("store: transaction already committed or rolled back")

// ErrSnapshotClosed is returned when query results are read after the
// snapshot backing them was closed. Scan itself does not check: callers own
// the snapshot's lifetime and must not use it after Close, since closing can
// release the version history the scan would read.
var ErrSnapshotClosed = errors.New("store: snapshot already closed")

// ErrConflict is returned by Commit when a conflicting concurrent commit is
// detected. With writers fully serialized this cannot currently happen; the
// error is part of the contract so callers written against it keep working if
// concurrent writers are ever allowed.
var ErrConflict = errors.New("store: conflicting concurrent commit")

// A StorageError wraps a failure from the storage layer itself (I/O failure
// or corruption from a persistence backend). It is fatal to the current
// transaction or query and is never retried internally.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
