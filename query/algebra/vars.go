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

package algebra

import "sort"

// ExprVars returns the names of the variables the expression refers to,
// sorted and without duplicates.
func ExprVars(expr Expr) []string {
	seen := make(map[string]bool)
	collectExprVars(expr, seen)
	return sortedNames(seen)
}

func collectExprVars(expr Expr, into map[string]bool) {
	switch e := expr.(type) {
	case *Var:
		into[e.Name] = true
	case *Constant:
	case *Compare:
		collectExprVars(e.Left, into)
		collectExprVars(e.Right, into)
	case *And:
		collectExprVars(e.Left, into)
		collectExprVars(e.Right, into)
	case *Or:
		collectExprVars(e.Left, into)
		collectExprVars(e.Right, into)
	case *Not:
		collectExprVars(e.Expr, into)
	case *Arith:
		collectExprVars(e.Left, into)
		collectExprVars(e.Right, into)
	case *Bound:
		into[e.Var.Name] = true
	}
}

// OperatorVars returns the names of the variables the operator can bind in
// its output, sorted and without duplicates.
func OperatorVars(op Operator) []string {
	seen := make(map[string]bool)
	collectOperatorVars(op, seen)
	return sortedNames(seen)
}

func collectOperatorVars(op Operator, into map[string]bool) {
	addTerm := func(term Term) {
		if v, ok := term.(*Var); ok {
			into[v.Name] = true
		}
	}
	switch o := op.(type) {
	case *BGP:
		for _, p := range o.Patterns {
			addTerm(p.Subject)
			addTerm(p.Predicate)
			addTerm(p.Object)
			addTerm(p.Graph)
		}
	case *Path:
		addTerm(o.Subject)
		addTerm(o.Object)
		addTerm(o.Graph)
	case *Join:
		collectOperatorVars(o.Left, into)
		collectOperatorVars(o.Right, into)
	case *LeftJoin:
		collectOperatorVars(o.Left, into)
		collectOperatorVars(o.Right, into)
	case *Union:
		collectOperatorVars(o.Left, into)
		collectOperatorVars(o.Right, into)
	case *Minus:
		// Right side variables never escape a Minus.
		collectOperatorVars(o.Left, into)
	case *Filter:
		collectOperatorVars(o.Input, into)
	case *Extend:
		collectOperatorVars(o.Input, into)
		into[o.Var.Name] = true
	case *Group:
		for _, key := range o.Keys {
			into[key.Name] = true
		}
		for _, agg := range o.Aggregates {
			into[agg.Var.Name] = true
		}
	case *OrderBy:
		collectOperatorVars(o.Input, into)
	case *Project:
		for _, v := range o.Vars {
			into[v.Name] = true
		}
	case *Distinct:
		collectOperatorVars(o.Input, into)
	case *Reduced:
		collectOperatorVars(o.Input, into)
	case *Slice:
		collectOperatorVars(o.Input, into)
	}
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
