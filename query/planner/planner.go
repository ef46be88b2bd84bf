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

// Package planner turns algebra trees into physical execution plans. The
// planner is a pure function of the algebra and the store's cardinality
// statistics: it pushes filters toward the scans that bind their variables,
// greedily orders joins by estimated cardinality, and picks a join
// algorithm per join based on the available keys.
package planner

import (
	"fmt"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/store"
)

// Stats supplies the cardinality estimates the planner orders joins by.
// store.Stats implements it; tests substitute fixed tables.
type Stats interface {
	TotalQuads() int
	PredicateCardinality(predicate rdf.IRI) int
}

// Prepare plans the query. It is deterministic: the same algebra and stats
// produce the same plan. It returns an error only for malformed algebra
// (nil inputs, empty patterns); every well-formed tree plans successfully.
func Prepare(query algebra.Operator, stats Stats) (*plandef.Plan, error) {
	p := &planner{
		stats: stats,
		vars:  make(map[string]*plandef.Variable),
	}
	return p.plan(query)
}

type planner struct {
	stats Stats
	// Canonical Variable instances, one per name, shared across the plan.
	vars map[string]*plandef.Variable
}

func (p *planner) plan(op algebra.Operator) (*plandef.Plan, error) {
	switch op := op.(type) {
	case *algebra.BGP:
		return p.planBGP(op.Patterns, nil)
	case *algebra.Path:
		return p.planPath(op)
	case *algebra.Join:
		return p.planJoin(op)
	case *algebra.LeftJoin:
		return p.planLeftJoin(op)
	case *algebra.Union:
		return p.planUnion(op)
	case *algebra.Minus:
		return p.planMinus(op)
	case *algebra.Filter:
		return p.planFilter(op.Expr, op.Input)
	case *algebra.Extend:
		return p.planExtend(op)
	case *algebra.Group:
		return p.planGroup(op)
	case *algebra.OrderBy:
		return p.planOrderBy(op)
	case *algebra.Project:
		return p.planProject(op)
	case *algebra.Distinct:
		input, err := p.plan(op.Input)
		if err != nil {
			return nil, err
		}
		return p.above(new(plandef.DistinctOp), input), nil
	case *algebra.Reduced:
		input, err := p.plan(op.Input)
		if err != nil {
			return nil, err
		}
		return p.above(new(plandef.ReducedOp), input), nil
	case *algebra.Slice:
		return p.planSlice(op)
	case nil:
		return nil, fmt.Errorf("planner: nil operator")
	}
	return nil, fmt.Errorf("planner: unexpected operator %T", op)
}

// variable returns the canonical Variable for the name, creating it on
// first use.
func (p *planner) variable(name string) *plandef.Variable {
	v := p.vars[name]
	if v == nil {
		v = &plandef.Variable{Name: name}
		p.vars[name] = v
	}
	return v
}

// term converts an algebra term to a plan term.
func (p *planner) term(t algebra.Term) plandef.Term {
	switch t := t.(type) {
	case *algebra.Var:
		return p.variable(t.Name)
	case *algebra.Constant:
		return &plandef.Constant{Term: t.Term}
	}
	return new(plandef.DontCare)
}

// varSet builds a VarSet from variable names.
func (p *planner) varSet(names []string) plandef.VarSet {
	in := make(map[string]*plandef.Variable, len(names))
	for _, name := range names {
		in[name] = p.variable(name)
	}
	return plandef.NewVarSet(in)
}

// above wraps the input in a single-input operator that passes its
// variables through unchanged.
func (p *planner) above(op plandef.Operator, input *plandef.Plan) *plandef.Plan {
	return &plandef.Plan{
		Operator:  op,
		Inputs:    []*plandef.Plan{input},
		Variables: input.Variables,
	}
}

func (p *planner) planPath(path *algebra.Path) (*plandef.Plan, error) {
	if path.Path == nil {
		return nil, fmt.Errorf("planner: path with nil expression")
	}
	op := &plandef.PathLookup{
		Subject: p.term(path.Subject),
		Path:    path.Path,
		Object:  p.term(path.Object),
		Graph:   p.term(path.Graph),
	}
	vars := p.varSet(algebra.OperatorVars(path))
	return &plandef.Plan{Operator: op, Variables: vars}, nil
}

func (p *planner) planUnion(u *algebra.Union) (*plandef.Plan, error) {
	left, err := p.plan(u.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.plan(u.Right)
	if err != nil {
		return nil, err
	}
	return &plandef.Plan{
		Operator:  new(plandef.UnionOp),
		Inputs:    []*plandef.Plan{left, right},
		Variables: left.Variables.Union(right.Variables),
	}, nil
}

func (p *planner) planMinus(m *algebra.Minus) (*plandef.Plan, error) {
	left, err := p.plan(m.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.plan(m.Right)
	if err != nil {
		return nil, err
	}
	return &plandef.Plan{
		Operator:  &plandef.MinusOp{Variables: left.Variables.Intersect(right.Variables)},
		Inputs:    []*plandef.Plan{left, right},
		Variables: left.Variables,
	}, nil
}

func (p *planner) planExtend(e *algebra.Extend) (*plandef.Plan, error) {
	input, err := p.plan(e.Input)
	if err != nil {
		return nil, err
	}
	out := p.variable(e.Var.Name)
	return &plandef.Plan{
		Operator:  &plandef.Bind{Var: out, Expr: e.Expr},
		Inputs:    []*plandef.Plan{input},
		Variables: input.Variables.Union(plandef.VarSet{out}),
	}, nil
}

func (p *planner) planGroup(g *algebra.Group) (*plandef.Plan, error) {
	input, err := p.plan(g.Input)
	if err != nil {
		return nil, err
	}
	op := &plandef.GroupByOp{}
	outNames := make([]string, 0, len(g.Keys)+len(g.Aggregates))
	for _, key := range g.Keys {
		op.Keys = append(op.Keys, p.variable(key.Name))
		outNames = append(outNames, key.Name)
	}
	for _, agg := range g.Aggregates {
		op.Aggregates = append(op.Aggregates, plandef.AggBinding{
			Out: p.variable(agg.Var.Name),
			Agg: agg.Aggregate,
		})
		outNames = append(outNames, agg.Var.Name)
	}
	return &plandef.Plan{
		Operator:  op,
		Inputs:    []*plandef.Plan{input},
		Variables: p.varSet(outNames),
	}, nil
}

func (p *planner) planOrderBy(o *algebra.OrderBy) (*plandef.Plan, error) {
	input, err := p.plan(o.Input)
	if err != nil {
		return nil, err
	}
	op := &plandef.OrderByOp{}
	for _, cond := range o.Conditions {
		dir := plandef.SortAsc
		if cond.Descending {
			dir = plandef.SortDesc
		}
		op.OrderBy = append(op.OrderBy, plandef.OrderCondition{
			Direction: dir,
			On:        cond.Expr,
		})
	}
	return p.above(op, input), nil
}

func (p *planner) planProject(proj *algebra.Project) (*plandef.Plan, error) {
	input, err := p.plan(proj.Input)
	if err != nil {
		return nil, err
	}
	op := &plandef.Projection{}
	names := make([]string, 0, len(proj.Vars))
	for _, v := range proj.Vars {
		op.Select = append(op.Select, p.variable(v.Name))
		names = append(names, v.Name)
	}
	op.Variables = p.varSet(names)
	return &plandef.Plan{
		Operator:  op,
		Inputs:    []*plandef.Plan{input},
		Variables: op.Variables,
	}, nil
}

func (p *planner) planSlice(s *algebra.Slice) (*plandef.Plan, error) {
	input, err := p.plan(s.Input)
	if err != nil {
		return nil, err
	}
	paging := plandef.LimitOffset{Limit: s.Limit}
	if s.Offset != 0 {
		offset := s.Offset
		paging.Offset = &offset
	}
	return p.above(&plandef.LimitAndOffsetOp{Paging: paging}, input), nil
}

// Compile-time check that the store's statistics satisfy the planner's
// Stats interface.
var _ Stats = store.Stats{}
