package main

import (
	"fmt"

	"github.com/koto-lang/koto-go/ast"
	"github.com/koto-lang/koto-go/constant"
	"github.com/koto-lang/koto-go/koto"
)

// evalTopLevel walks the small AST subset a stub VM can evaluate
// without a bytecode compiler: literals, lists, ranges, and binary
// operators dispatched through koto.SimpleVM. This is deliberately
// not a general evaluator — it exists to give the `run` subcommand
// something real to exercise end to end, per SPEC_FULL.md's note that
// cmd/koto carries "stub/minimal VM semantics ... not a second
// compiler".
func evalTopLevel(vm *koto.SimpleVM, arena *ast.Arena, pool *constant.Pool, idx ast.Index) (koto.Value, error) {
	n := arena.Node(idx)
	switch n.Kind {
	case ast.MainBlock:
		return evalTopLevel(vm, arena, pool, n.Body)
	case ast.Block:
		var result koto.Value
		for _, child := range n.Children {
			v, err := evalTopLevel(vm, arena, pool, child)
			if err != nil {
				return koto.Null, err
			}
			result = v
		}
		return result, nil
	case ast.Expressions:
		var result koto.Value
		for _, child := range n.Children {
			v, err := evalTopLevel(vm, arena, pool, child)
			if err != nil {
				return koto.Null, err
			}
			result = v
		}
		return result, nil
	case ast.Empty:
		return koto.Null, nil
	case ast.BoolTrue:
		return koto.Bool(true), nil
	case ast.BoolFalse:
		return koto.Bool(false), nil
	case ast.Number0:
		return koto.Number(0), nil
	case ast.Number1:
		return koto.Number(1), nil
	case ast.Number:
		return koto.Number(pool.Number(n.ConstIndex)), nil
	case ast.Str:
		return koto.Str(pool.Str(n.ConstIndex)), nil
	case ast.List:
		items := make([]koto.Value, 0, len(n.Children))
		for _, child := range n.Children {
			v, err := evalTopLevel(vm, arena, pool, child)
			if err != nil {
				return koto.Null, err
			}
			items = append(items, v)
		}
		return koto.List(items), nil
	case ast.RangeNode:
		start, err := evalTopLevel(vm, arena, pool, n.RangeStart)
		if err != nil {
			return koto.Null, err
		}
		end, err := evalTopLevel(vm, arena, pool, n.RangeEnd)
		if err != nil {
			return koto.Null, err
		}
		return koto.MakeRange(koto.RangeValue{
			Start:     int64(start.Number),
			End:       int64(end.Number),
			Inclusive: n.RangeInclusive,
		}), nil
	case ast.Debug:
		v, err := evalTopLevel(vm, arena, pool, n.Inner)
		if err != nil {
			return koto.Null, err
		}
		fmt.Fprintf(vm.Stderr(), "%s: %s\n", n.ExpressionString, v.String())
		return v, nil
	case ast.BinaryOp:
		lhs, err := evalTopLevel(vm, arena, pool, n.BinLHS)
		if err != nil {
			return koto.Null, err
		}
		rhs, err := evalTopLevel(vm, arena, pool, n.BinRHS)
		if err != nil {
			return koto.Null, err
		}
		op, ok := toSimpleVMOp(n.BinOp)
		if !ok {
			return koto.Null, fmt.Errorf("run: operator not supported by the stub VM")
		}
		return vm.RunBinaryOp(op, lhs, rhs)
	default:
		return koto.Null, fmt.Errorf("run: expression kind %d is not supported by the stub VM", n.Kind)
	}
}

func toSimpleVMOp(op ast.BinOp) (koto.BinaryOp, bool) {
	switch op {
	case ast.OpLess:
		return koto.OpLess, true
	case ast.OpLessOrEqual:
		return koto.OpLessOrEqual, true
	case ast.OpAdd:
		return koto.OpAdd, true
	case ast.OpMultiply:
		return koto.OpMultiply, true
	default:
		return 0, false
	}
}
