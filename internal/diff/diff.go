// Package diff compares two JSON documents and reports the differences as a
// JSON Patch-like list of replace, add and remove operations addressed by
// JSON Pointer paths.
//
// Objects are compared key by key and arrays index by index, recursing into
// containers present on both sides. Removed and added subtrees are reported
// whole. Leaves are equal when their compact JSON text is byte-identical, so
// 1 and 1.0 differ.
package diff

import (
	"context"
	"fmt"

	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/parser"
	"github.com/mcncl/jsonlens/internal/pointer"
)

// Compute returns the operations that turn original into updated, in
// traversal order. It fails only if ctx is done before the walk completes.
func Compute(ctx context.Context, original, updated models.Value) ([]Operation, error) {
	d := &differ{ctx: ctx, ops: make([]Operation, 0)}
	if err := d.build(original, updated, ""); err != nil {
		return nil, err
	}
	return d.ops, nil
}

// differ owns the operation buffer for one Compute call.
type differ struct {
	ctx context.Context
	ops []Operation
}

func (d *differ) build(original, updated models.Value, path string) error {
	if err := d.ctx.Err(); err != nil {
		return errors.NewProcessingError("diff interrupted", err)
	}

	switch {
	case original.Kind == models.Object && updated.Kind == models.Object:
		return d.objects(original, updated, path)
	case original.Kind == models.Array && updated.Kind == models.Array:
		return d.arrays(original, updated, path)
	}

	// Leaves, or containers of different kinds.
	d.compareLeaf(original, updated, path)
	return nil
}

func (d *differ) objects(original, updated models.Value, path string) error {
	updatedIndex := indexMembers(updated)

	for _, m := range original.Members {
		childPath := pointer.Append(path, m.Key)
		i, ok := updatedIndex[m.Key]
		if !ok {
			d.ops = append(d.ops, Remove(childPath, m.Value))
			continue
		}

		uChild := updated.Members[i].Value
		if m.Value.IsLeaf() && uChild.IsLeaf() {
			d.compareLeaf(m.Value, uChild, childPath)
			continue
		}
		if err := d.build(m.Value, uChild, childPath); err != nil {
			return err
		}
	}

	originalIndex := indexMembers(original)
	for _, m := range updated.Members {
		if _, ok := originalIndex[m.Key]; !ok {
			d.ops = append(d.ops, Add(pointer.Append(path, m.Key), m.Value))
		}
	}
	return nil
}

func (d *differ) arrays(original, updated models.Value, path string) error {
	shared := min(len(original.Items), len(updated.Items))

	for i := 0; i < shared; i++ {
		oElem, uElem := original.Items[i], updated.Items[i]
		elemPath := pointer.AppendIndex(path, i)

		switch {
		case oElem.IsNull() && uElem.IsNull():
			continue
		case oElem.IsNull():
			d.ops = append(d.ops, Add(elemPath, uElem))
		case uElem.IsNull():
			d.ops = append(d.ops, Remove(elemPath, oElem))
		case oElem.IsLeaf() && uElem.IsLeaf():
			d.compareLeaf(oElem, uElem, elemPath)
		default:
			if err := d.build(oElem, uElem, elemPath); err != nil {
				return err
			}
		}
	}

	for i := len(updated.Items); i < len(original.Items); i++ {
		d.ops = append(d.ops, Remove(pointer.AppendIndex(path, i), original.Items[i]))
	}
	for i := len(original.Items); i < len(updated.Items); i++ {
		d.ops = append(d.ops, Add(pointer.AppendIndex(path, i), updated.Items[i]))
	}
	return nil
}

func (d *differ) compareLeaf(original, updated models.Value, path string) {
	if !models.Equal(original, updated) {
		d.ops = append(d.ops, Replace(path, original, updated))
	}
}

func indexMembers(obj models.Value) map[string]int {
	index := make(map[string]int, len(obj.Members))
	for i, m := range obj.Members {
		index[m.Key] = i
	}
	return index
}

// JSONDiff parses both documents and returns their diff as a compact JSON
// array. It never fails: any parse or processing failure is returned as a
// single error operation, and a null document on either side yields [].
func JSONDiff(ctx context.Context, originalJSON, updatedJSON string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(errors.NewProcessingError(fmt.Sprintf("unexpected failure: %v", r), nil))
		}
	}()

	original, err := parser.ParseString(originalJSON)
	if err != nil {
		return failure(err)
	}
	updated, err := parser.ParseString(updatedJSON)
	if err != nil {
		return failure(err)
	}
	if original.IsNull() || updated.IsNull() {
		return "[]"
	}

	ops, err := Compute(ctx, original, updated)
	if err != nil {
		return failure(err)
	}

	encoded, err := Encode(ops)
	if err != nil {
		return failure(errors.NewOutputError("failed to encode diff", err))
	}
	return encoded
}

func failure(err error) string {
	encoded, encErr := Encode([]Operation{Failure(errors.Describe(err))})
	if encErr != nil {
		return `[{"op":"error","path":"","reason":"failed to encode diff error"}]`
	}
	return encoded
}
