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
	"context"
	"testing"
	"time"

	"github.com/ebay/quarry/util/clocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Presets(t *testing.T) {
	def := Default()
	assert.Equal(t, 30*time.Second, def.Timeout)
	assert.Equal(t, uint64(10000), def.MaxResultRows)
	assert.Equal(t, uint64(1000), def.MaxGroups)
	assert.Equal(t, uint64(1000), def.MaxPropertyPathDepth)
	assert.Equal(t, uint64(1<<30), def.MaxMemoryBytes)

	strict := Strict()
	assert.Equal(t, 5*time.Second, strict.Timeout)
	assert.Equal(t, uint64(1000), strict.MaxResultRows)
	assert.Equal(t, uint64(100), strict.MaxGroups)

	perm := Permissive()
	assert.Equal(t, 5*time.Minute, perm.Timeout)
	assert.Equal(t, uint64(100000), perm.MaxResultRows)

	assert.Equal(t, Limits{}, Unlimited())
}

func Test_GovernorTimeout(t *testing.T) {
	mock := clocks.NewMock()
	gov := NewGovernor(Limits{Timeout: time.Second}, mock)
	ctx := context.Background()
	require.NoError(t, gov.Check(ctx))

	mock.Advance(2 * time.Second)
	err := gov.Check(ctx)
	require.Error(t, err)
	cancelled := &CancelledError{}
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, time.Second, cancelled.Timeout)
	assert.Equal(t, "query timed out after 1s", cancelled.Error())
}

func Test_GovernorCancellation(t *testing.T) {
	gov := NewGovernor(Unlimited(), clocks.Wall)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, gov.Check(ctx))

	cancel()
	err := gov.Check(ctx)
	cancelled := &CancelledError{}
	require.ErrorAs(t, err, &cancelled)
	assert.Zero(t, cancelled.Timeout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "query cancelled", cancelled.Error())
}

func Test_GovernorRowCeiling(t *testing.T) {
	gov := NewGovernor(Limits{MaxResultRows: 3}, clocks.Wall)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, gov.AddRow(ctx))
	}
	err := gov.AddRow(ctx)
	limitErr := &LimitError{}
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, LimitRows, limitErr.Kind)
	assert.Equal(t, uint64(4), limitErr.Current)
	assert.Equal(t, uint64(3), limitErr.Ceiling)
	assert.Equal(t, "query exceeded result rows limit: 4 > 3", err.Error())
}

func Test_GovernorGroupCeiling(t *testing.T) {
	gov := NewGovernor(Limits{MaxGroups: 2}, clocks.Wall)
	ctx := context.Background()
	require.NoError(t, gov.AddGroup(ctx))
	require.NoError(t, gov.AddGroup(ctx))
	err := gov.AddGroup(ctx)
	limitErr := &LimitError{}
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, LimitGroups, limitErr.Kind)
}

func Test_GovernorPathDepth(t *testing.T) {
	gov := NewGovernor(Limits{MaxPropertyPathDepth: 5}, clocks.Wall)
	ctx := context.Background()
	require.NoError(t, gov.PathStep(ctx, 5))
	err := gov.PathStep(ctx, 6)
	limitErr := &LimitError{}
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, LimitPathDepth, limitErr.Kind)
	assert.Equal(t, uint64(6), limitErr.Current)
}

func Test_GovernorMemory(t *testing.T) {
	gov := NewGovernor(Limits{MaxMemoryBytes: 1000}, clocks.Wall)
	ctx := context.Background()
	require.NoError(t, gov.Grow(ctx, 600))
	require.NoError(t, gov.Grow(ctx, 400))
	err := gov.Grow(ctx, 1)
	limitErr := &LimitError{}
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, LimitMemory, limitErr.Kind)
	assert.Equal(t, uint64(1001), limitErr.Current)
}

func Test_GovernorUnlimited(t *testing.T) {
	gov := NewGovernor(Unlimited(), clocks.Wall)
	ctx := context.Background()
	for i := 0; i < 100000; i++ {
		require.NoError(t, gov.AddRow(ctx))
	}
	require.NoError(t, gov.Grow(ctx, 1<<40))
	require.NoError(t, gov.PathStep(ctx, 1<<30))
}
