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
	"context"
	"fmt"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/store"
)

// pathLookup finds node pairs connected by a property path expression.
// Closures (* and +) run as iterative frontier expansion over dictionary
// IDs with a visited set, so cyclic data terminates; the governor's path
// depth ceiling bounds each expansion and its timeout bounds the whole
// walk. Results are computed on the first pull.
type pathLookup struct {
	def  *plandef.PathLookup
	ec   evalContext
	cols Columns
	// colPos maps each output column to its position: 0 subject, 1 object,
	// 2 graph.
	colPos []int
	// equalPos pairs positions that must hold equal terms, from a variable
	// repeated across positions.
	equalPos [][2]int

	results  []row
	pos      int
	computed bool
}

func newPathLookup(def *plandef.PathLookup, ec evalContext) (queryOperator, error) {
	op := &pathLookup{def: def, ec: ec}
	seen := make(map[*plandef.Variable]int)
	terms := []plandef.Term{def.Subject, def.Object, def.Graph}
	for pos, term := range terms {
		v, ok := term.(*plandef.Variable)
		if !ok {
			continue
		}
		if firstPos, dup := seen[v]; dup {
			op.equalPos = append(op.equalPos, [2]int{firstPos, pos})
			continue
		}
		seen[v] = pos
		op.cols = append(op.cols, v)
		op.colPos = append(op.colPos, pos)
	}
	return op, nil
}

func (op *pathLookup) operator() plandef.Operator { return op.def }
func (op *pathLookup) columns() Columns           { return op.cols }

func (op *pathLookup) reset() {
	op.results = nil
	op.pos = 0
	op.computed = false
}

func (op *pathLookup) next(ctx context.Context) (row, bool, error) {
	if !op.computed {
		if err := op.compute(ctx); err != nil {
			return nil, false, err
		}
		op.computed = true
	}
	if op.pos >= len(op.results) {
		return nil, false, nil
	}
	r := op.results[op.pos]
	op.pos++
	return r, true, nil
}

func (op *pathLookup) compute(ctx context.Context) error {
	graphs, err := op.candidateGraphs(ctx)
	if err != nil {
		return err
	}
	for _, g := range graphs {
		if err := op.evalInGraph(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// candidateGraphs returns the graphs to evaluate the path in. A fixed graph
// term gives exactly one; a variable or don't-care graph means every graph
// in the store.
func (op *pathLookup) candidateGraphs(ctx context.Context) ([]Value, error) {
	switch t := op.def.Graph.(type) {
	case *plandef.Constant:
		// A graph the store never interned holds no edges; ID 0 would act
		// as a wildcard in the walk's scans.
		id, ok := op.ec.dict.Lookup(t.Term)
		if !ok {
			return nil, nil
		}
		return []Value{{ID: id, Term: t.Term}}, nil
	case *plandef.Binding:
		val := op.ec.binder.value(t)
		if val.ID == 0 {
			id, ok := op.ec.dict.Lookup(val.Term)
			if !ok {
				return nil, nil
			}
			val.ID = id
		}
		return []Value{val}, nil
	}
	seen := make(map[store.ID]struct{})
	var graphs []Value
	it := op.ec.snap.ScanIDs(store.IDPattern{})
	for {
		if err := op.ec.gov.Check(ctx); err != nil {
			return nil, err
		}
		q, ok := it.Next()
		if !ok {
			return graphs, nil
		}
		if _, dup := seen[q.Graph]; dup {
			continue
		}
		seen[q.Graph] = struct{}{}
		graphs = append(graphs, Value{ID: q.Graph, Term: op.ec.dict.Resolve(q.Graph)})
	}
}

// evalInGraph appends the path's solutions within one graph to the results.
func (op *pathLookup) evalInGraph(ctx context.Context, graph Value) error {
	walk := &pathWalk{ec: op.ec, graph: graph.ID}
	subject, subjFixed := op.fixedEndpoint(op.def.Subject)
	object, objFixed := op.fixedEndpoint(op.def.Object)

	switch {
	case subjFixed && objFixed:
		reached, err := walk.reachFrom(ctx, subject, op.def.Path, forward)
		if err != nil {
			return err
		}
		if reached.containsValue(object) {
			return op.emit(ctx, subject, object, graph)
		}
		return nil

	case subjFixed:
		reached, err := walk.reachFrom(ctx, subject, op.def.Path, forward)
		if err != nil {
			return err
		}
		return reached.each(op.ec, func(obj Value) error {
			return op.emit(ctx, subject, obj, graph)
		})

	case objFixed:
		reached, err := walk.reachFrom(ctx, object, op.def.Path, backward)
		if err != nil {
			return err
		}
		return reached.each(op.ec, func(subj Value) error {
			return op.emit(ctx, subj, object, graph)
		})

	default:
		// Both endpoints free: expand forward from every node in the graph.
		starts, err := walk.graphNodes(ctx)
		if err != nil {
			return err
		}
		for _, startID := range starts {
			subj := Value{ID: startID, Term: op.ec.dict.Resolve(startID)}
			reached, err := walk.reachFrom(ctx, subj, op.def.Path, forward)
			if err != nil {
				return err
			}
			err = reached.each(op.ec, func(obj Value) error {
				return op.emit(ctx, subj, obj, graph)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// fixedEndpoint resolves an endpoint term if it's fixed by the pattern or
// an enclosing join. fixed is false for variables and don't-cares.
func (op *pathLookup) fixedEndpoint(term plandef.Term) (Value, bool) {
	switch t := term.(type) {
	case *plandef.Constant:
		id, _ := op.ec.dict.Lookup(t.Term)
		return Value{ID: id, Term: t.Term}, true
	case *plandef.Binding:
		return op.ec.binder.value(t), true
	}
	return Value{}, false
}

// emit adds one solution row, checking repeated-variable equality.
func (op *pathLookup) emit(ctx context.Context, subject, object, graph Value) error {
	positions := [3]Value{subject, object, graph}
	for _, pair := range op.equalPos {
		a, b := positions[pair[0]], positions[pair[1]]
		if a.Term.String() != b.Term.String() {
			return nil
		}
	}
	out := make(row, len(op.cols))
	for i, pos := range op.colPos {
		out[i] = positions[pos]
	}
	if err := op.ec.gov.Grow(ctx, rowBytes(out)); err != nil {
		return err
	}
	op.results = append(op.results, out)
	return nil
}

// pathWalk evaluates path expressions over one graph's edges.
type pathWalk struct {
	ec    evalContext
	graph store.ID
}

type direction bool

const (
	forward  direction = false
	backward direction = true
)

// nodeSet is the result of a path traversal: reached dictionary IDs, plus
// optionally the non-interned start term, which only a zero-length path can
// reach.
type nodeSet struct {
	ids  map[store.ID]struct{}
	self *Value
}

func newNodeSet() *nodeSet {
	return &nodeSet{ids: make(map[store.ID]struct{})}
}

func (s *nodeSet) add(id store.ID) {
	s.ids[id] = struct{}{}
}

func (s *nodeSet) contains(id store.ID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *nodeSet) containsValue(v Value) bool {
	if v.ID != 0 {
		return s.contains(v.ID)
	}
	return s.self != nil && s.self.Term.String() == v.Term.String()
}

// each calls fn for every node in the set, in unspecified order.
func (s *nodeSet) each(ec evalContext, fn func(Value) error) error {
	for id := range s.ids {
		if err := fn(Value{ID: id, Term: ec.dict.Resolve(id)}); err != nil {
			return err
		}
	}
	if s.self != nil {
		if err := fn(*s.self); err != nil {
			return err
		}
	}
	return nil
}

// reachFrom returns the nodes related to start by one traversal of the path
// expression. A start term the store has never seen has no edges, but a
// zero-length path still relates it to itself.
func (w *pathWalk) reachFrom(ctx context.Context, start Value, expr algebra.PathExpr, dir direction) (*nodeSet, error) {
	if start.ID == 0 {
		set := newNodeSet()
		if zeroLength(expr) {
			self := start
			set.self = &self
		}
		return set, nil
	}
	return w.reach(ctx, start.ID, expr, dir)
}

// reach is reachFrom for interned nodes.
func (w *pathWalk) reach(ctx context.Context, start store.ID, expr algebra.PathExpr, dir direction) (*nodeSet, error) {
	switch e := expr.(type) {
	case *algebra.Predicate:
		return w.step(ctx, start, e.IRI, dir)

	case *algebra.Inverse:
		return w.reach(ctx, start, e.Path, !dir)

	case *algebra.Sequence:
		first, second := e.Left, e.Right
		if dir == backward {
			first, second = second, first
		}
		mids, err := w.reach(ctx, start, first, dir)
		if err != nil {
			return nil, err
		}
		out := newNodeSet()
		for mid := range mids.ids {
			ends, err := w.reach(ctx, mid, second, dir)
			if err != nil {
				return nil, err
			}
			for id := range ends.ids {
				out.add(id)
			}
		}
		return out, nil

	case *algebra.Alternative:
		left, err := w.reach(ctx, start, e.Left, dir)
		if err != nil {
			return nil, err
		}
		right, err := w.reach(ctx, start, e.Right, dir)
		if err != nil {
			return nil, err
		}
		for id := range right.ids {
			left.add(id)
		}
		return left, nil

	case *algebra.ZeroOrMore:
		return w.closure(ctx, start, e.Path, dir, true)

	case *algebra.OneOrMore:
		return w.closure(ctx, start, e.Path, dir, false)

	case *algebra.ZeroOrOne:
		set, err := w.reach(ctx, start, e.Path, dir)
		if err != nil {
			return nil, err
		}
		set.add(start)
		return set, nil
	}
	return nil, fmt.Errorf("exec: unexpected path expression %T", expr)
}

// step traverses a single predicate edge.
func (w *pathWalk) step(ctx context.Context, start store.ID, pred rdf.IRI, dir direction) (*nodeSet, error) {
	if err := w.ec.gov.Check(ctx); err != nil {
		return nil, err
	}
	out := newNodeSet()
	predID, ok := w.ec.dict.Lookup(pred)
	if !ok {
		return out, nil
	}
	pattern := store.IDPattern{Predicate: predID, Graph: w.graph}
	if dir == forward {
		pattern.Subject = start
	} else {
		pattern.Object = start
	}
	it := w.ec.snap.ScanIDs(pattern)
	for {
		q, ok := it.Next()
		if !ok {
			return out, nil
		}
		if dir == forward {
			out.add(q.Object)
		} else {
			out.add(q.Subject)
		}
	}
}

// closure is the transitive expansion shared by * and +: breadth-first
// from start, one inner-path traversal per ply, stopping when the frontier
// empties. With includeStart the result always holds start (zero-length);
// without, start shows up only if some cycle leads back to it.
func (w *pathWalk) closure(ctx context.Context, start store.ID, inner algebra.PathExpr, dir direction, includeStart bool) (*nodeSet, error) {
	visited := newNodeSet()
	if includeStart {
		visited.add(start)
	}
	frontier := []store.ID{start}
	var depth uint64
	for len(frontier) > 0 {
		depth++
		if err := w.ec.gov.PathStep(ctx, depth); err != nil {
			return nil, err
		}
		var next []store.ID
		for _, node := range frontier {
			reached, err := w.reach(ctx, node, inner, dir)
			if err != nil {
				return nil, err
			}
			for id := range reached.ids {
				if visited.contains(id) {
					continue
				}
				visited.add(id)
				next = append(next, id)
			}
		}
		frontier = next
	}
	return visited, nil
}

// graphNodes returns every node appearing as a subject or object in the
// graph. These are the start candidates when both path endpoints are free;
// they are also exactly the terms a zero-length path can begin at.
func (w *pathWalk) graphNodes(ctx context.Context) ([]store.ID, error) {
	seen := make(map[store.ID]struct{})
	var nodes []store.ID
	add := func(id store.ID) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			nodes = append(nodes, id)
		}
	}
	it := w.ec.snap.ScanIDs(store.IDPattern{Graph: w.graph})
	for {
		if err := w.ec.gov.Check(ctx); err != nil {
			return nil, err
		}
		q, ok := it.Next()
		if !ok {
			return nodes, nil
		}
		add(q.Subject)
		add(q.Object)
	}
}

// zeroLength reports whether the path expression can match a zero-length
// path, relating a term to itself with no edges traversed.
func zeroLength(expr algebra.PathExpr) bool {
	switch e := expr.(type) {
	case *algebra.ZeroOrMore, *algebra.ZeroOrOne:
		return true
	case *algebra.Inverse:
		return zeroLength(e.Path)
	case *algebra.Sequence:
		return zeroLength(e.Left) && zeroLength(e.Right)
	case *algebra.Alternative:
		return zeroLength(e.Left) || zeroLength(e.Right)
	}
	return false
}
