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

// Package cmp contains small comparison helpers and the Key interface used to
// build canonical string keys for plan operators.
package cmp

import "strings"

// Key is implemented by types that can write a canonical representation of
// themselves to a strings.Builder. Two values of the same type with equal keys
// are interchangeable.
type Key interface {
	Key(b *strings.Builder)
}

// GetKey returns the canonical key for k as a string.
func GetKey(k Key) string {
	b := strings.Builder{}
	k.Key(&b)
	return b.String()
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
