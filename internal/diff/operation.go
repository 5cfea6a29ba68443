package diff

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/parser"
)

// Op names a diff operation.
type Op string

const (
	OpReplace Op = "replace"
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpError   Op = "error"
)

// Operation is a single entry of a diff. From is set for replace and
// remove, To for replace and add, Reason only for error.
type Operation struct {
	Op     Op
	Path   string
	From   *models.Value
	To     *models.Value
	Reason string
}

// Replace records a changed value at path.
func Replace(path string, from, to models.Value) Operation {
	f, t := from.Clone(), to.Clone()
	return Operation{Op: OpReplace, Path: path, From: &f, To: &t}
}

// Add records a value present only in the updated document.
func Add(path string, to models.Value) Operation {
	t := to.Clone()
	return Operation{Op: OpAdd, Path: path, To: &t}
}

// Remove records a value present only in the original document.
func Remove(path string, from models.Value) Operation {
	f := from.Clone()
	return Operation{Op: OpRemove, Path: path, From: &f}
}

// Failure records a diff that could not be computed.
func Failure(reason string) Operation {
	return Operation{Op: OpError, Reason: reason}
}

type wireOperation struct {
	Op     Op              `json:"op"`
	Path   string          `json:"path"`
	From   json.RawMessage `json:"from,omitempty"`
	To     json.RawMessage `json:"to,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// MarshalJSON writes the operation with only the fields its op carries.
func (o Operation) MarshalJSON() ([]byte, error) {
	w := wireOperation{Op: o.Op, Path: o.Path, Reason: o.Reason}
	if o.From != nil {
		data, err := o.From.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode 'from' at %q: %w", o.Path, err)
		}
		w.From = data
	}
	if o.To != nil {
		data, err := o.To.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode 'to' at %q: %w", o.Path, err)
		}
		w.To = data
	}
	return marshal(w)
}

// UnmarshalJSON reads an operation, keeping object member order of its values.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var w wireOperation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Operation{Op: w.Op, Path: w.Path, Reason: w.Reason}
	if len(w.From) > 0 {
		v, err := parser.ParseBytes(w.From)
		if err != nil {
			return fmt.Errorf("failed to decode 'from': %w", err)
		}
		o.From = &v
	}
	if len(w.To) > 0 {
		v, err := parser.ParseBytes(w.To)
		if err != nil {
			return fmt.Errorf("failed to decode 'to': %w", err)
		}
		o.To = &v
	}
	return nil
}

// Encode serializes operations as a compact JSON array. A nil slice
// encodes as [].
func Encode(ops []Operation) (string, error) {
	if ops == nil {
		ops = []Operation{}
	}
	data, err := marshal(ops)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a JSON array produced by Encode.
func Decode(data string) ([]Operation, error) {
	var ops []Operation
	if err := json.Unmarshal([]byte(data), &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
