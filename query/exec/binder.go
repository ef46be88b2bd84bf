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

package exec

import (
	"fmt"

	"github.com/ebay/quarry/query/planner/plandef"
)

// A binder supplies current values for plandef.Binding terms. A loop join
// owns one binder: before each run of its inner side it binds the outer
// row's values, then resets the inner operators, which re-read the binder.
// Binders nest for nested loop joins; lookups resolve through the chain.
type binder struct {
	parent *binder
	values map[*plandef.Variable]Value
}

func newBinder(parent *binder) *binder {
	return &binder{
		parent: parent,
		values: make(map[*plandef.Variable]Value),
	}
}

// bind sets the current value for a variable bound by the owning join.
func (b *binder) bind(v *plandef.Variable, val Value) {
	b.values[v] = val
}

// value returns the current value for the binding. The planner only emits
// Binding terms for variables bound by an enclosing join, so a miss is a
// planner bug.
func (b *binder) value(binding *plandef.Binding) Value {
	for cur := b; cur != nil; cur = cur.parent {
		if val, ok := cur.values[binding.Var]; ok {
			return val
		}
	}
	panic(fmt.Sprintf("no current value for binding %v", binding))
}
