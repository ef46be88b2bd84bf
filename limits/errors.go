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

package limits

import (
	"fmt"
	"time"
)

// LimitKind identifies which ceiling a LimitError reports. One kind per
// configurable ceiling, so callers can react specifically.
type LimitKind int

const (
	// LimitRows is the MaxResultRows ceiling.
	LimitRows LimitKind = iota
	// LimitGroups is the MaxGroups ceiling.
	LimitGroups
	// LimitPathDepth is the MaxPropertyPathDepth ceiling.
	LimitPathDepth
	// LimitMemory is the MaxMemoryBytes ceiling.
	LimitMemory
)

func (k LimitKind) String() string {
	switch k {
	case LimitRows:
		return "result rows"
	case LimitGroups:
		return "groups"
	case LimitPathDepth:
		return "property path depth"
	case LimitMemory:
		return "memory bytes"
	}
	return fmt.Sprintf("LimitKind(%d)", int(k))
}

// A LimitError reports that a configured resource ceiling was exceeded. It
// carries the ceiling and the value that tripped it so callers can adjust
// the query or the configuration without digging through logs.
type LimitError struct {
	Kind    LimitKind
	Current uint64
	Ceiling uint64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("query exceeded %v limit: %d > %d", e.Kind, e.Current, e.Ceiling)
}

// A CancelledError reports that evaluation was halted before completing,
// either by the wall-clock timeout or by explicit cancellation. The caller
// may retry with different limits or a different query.
type CancelledError struct {
	// Timeout is the configured timeout when a deadline caused the halt,
	// zero when the caller cancelled explicitly.
	Timeout time.Duration
	// Cause is the underlying context error for explicit cancellation.
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Timeout != 0 {
		return fmt.Sprintf("query timed out after %v", e.Timeout)
	}
	return "query cancelled"
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}
