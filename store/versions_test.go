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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VersionRange_Empty(t *testing.T) {
	r := versionRange{}
	assert.True(t, r.empty())
	assert.False(t, r.open())
	assert.False(t, r.contains(0))
	assert.False(t, r.contains(42))
	assert.False(t, r.close(1), "closing an empty range is a no-op")
}

func Test_VersionRange_AddClose(t *testing.T) {
	r := versionRange{}
	assert.True(t, r.add(3))
	assert.True(t, r.open())
	assert.False(t, r.contains(2))
	assert.True(t, r.contains(3))
	assert.True(t, r.contains(1000))

	assert.False(t, r.add(5), "adding to an open range is a no-op")

	assert.True(t, r.close(7))
	assert.True(t, r.contains(3))
	assert.True(t, r.contains(6))
	assert.False(t, r.contains(7))
	assert.False(t, r.open())

	assert.False(t, r.close(8), "closing a closed range is a no-op")
}

func Test_VersionRange_ReopenSameVersion(t *testing.T) {
	// Deleting and re-inserting in the same transaction merges the ranges.
	r := versionRange{}
	r.add(1)
	r.close(5)
	assert.True(t, r.add(5))
	assert.True(t, r.open())
	assert.True(t, r.contains(5))
	assert.True(t, r.contains(4))
	assert.False(t, r.spilled)
}

func Test_VersionRange_InsertDeleteSameVersion(t *testing.T) {
	// Inserting and deleting at the same version leaves no trace.
	r := versionRange{}
	r.add(5)
	assert.True(t, r.close(5))
	assert.True(t, r.empty())
}

func Test_VersionRange_Spill(t *testing.T) {
	r := versionRange{}
	r.add(1)
	r.close(2)
	r.add(3)
	assert.True(t, r.spilled)
	r.close(4)
	r.add(5)

	assert.True(t, r.contains(1))
	assert.False(t, r.contains(2))
	assert.True(t, r.contains(3))
	assert.False(t, r.contains(4))
	assert.True(t, r.contains(5))
	assert.True(t, r.contains(99))
	assert.False(t, r.contains(0))
}

func Test_VersionRange_Truncate(t *testing.T) {
	r := versionRange{}
	r.add(1)
	r.close(2)
	r.add(3)
	r.close(4)
	r.add(5)

	// Nothing below version 2 survives truncation at 2.
	assert.False(t, r.truncate(2))
	assert.False(t, r.contains(1))
	assert.True(t, r.contains(3))
	assert.True(t, r.contains(5))

	// The open range always survives.
	assert.False(t, r.truncate(100))
	assert.True(t, r.contains(100))
	assert.False(t, r.spilled)

	closed := versionRange{}
	closed.add(1)
	closed.close(2)
	assert.True(t, closed.truncate(2), "fully-dead entry reports empty")
	assert.True(t, closed.empty())
}
