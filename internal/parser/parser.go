package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jsonlens/internal/errors" // Custom errors package
	"github.com/mcncl/jsonlens/internal/models"
)

// MaxDepth bounds how deeply arrays and objects may nest.
const MaxDepth = 10000

// Parse reads exactly one JSON value from reader and returns it as an
// order-preserving tree.
func Parse(reader io.Reader) (models.Value, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Keep number literals verbatim

	p := &treeParser{decoder: decoder}
	root, err := p.value(0)
	if err != nil {
		return models.Value{}, err
	}

	// Anything other than EOF after the root is trailing data.
	if _, err := decoder.Token(); !stderrors.Is(err, io.EOF) {
		if err == nil {
			return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return models.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", wrapSyntax(err))
	}

	return root, nil
}

type treeParser struct {
	decoder *json.Decoder
}

func (p *treeParser) value(depth int) (models.Value, error) {
	tok, err := p.decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			if depth == 0 {
				return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
			}
			return models.Value{}, errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return models.Value{}, p.syntaxError(err)
	}

	switch t := tok.(type) {
	case nil:
		return models.NullValue(), nil
	case bool:
		return models.BoolValue(t), nil
	case json.Number:
		return models.NumberValue(t), nil
	case string:
		return models.StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return models.Value{}, errors.NewParsingError(
				fmt.Sprintf("exceeded max depth of %d at offset %d", MaxDepth, p.decoder.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		}
	}
	return models.Value{}, errors.NewParsingError(
		fmt.Sprintf("unexpected token %v at offset %d", tok, p.decoder.InputOffset()),
		errors.ErrInvalidJSON,
	)
}

func (p *treeParser) object(depth int) (models.Value, error) {
	members := make([]models.Member, 0)
	seen := make(map[string]struct{})

	for p.decoder.More() {
		keyTok, err := p.decoder.Token()
		if err != nil {
			return models.Value{}, p.syntaxError(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return models.Value{}, errors.NewParsingError(
				fmt.Sprintf("object key must be a string at offset %d", p.decoder.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
		if _, dup := seen[key]; dup {
			return models.Value{}, errors.NewParsingError(
				fmt.Sprintf("duplicate key %q at offset %d", key, p.decoder.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
		seen[key] = struct{}{}

		val, err := p.value(depth)
		if err != nil {
			return models.Value{}, err
		}
		members = append(members, models.Member{Key: key, Value: val})
	}

	if err := p.closing('}'); err != nil {
		return models.Value{}, err
	}
	return models.ObjectValue(members...), nil
}

func (p *treeParser) array(depth int) (models.Value, error) {
	items := make([]models.Value, 0)

	for p.decoder.More() {
		val, err := p.value(depth)
		if err != nil {
			return models.Value{}, err
		}
		items = append(items, val)
	}

	if err := p.closing(']'); err != nil {
		return models.Value{}, err
	}
	return models.ArrayValue(items...), nil
}

func (p *treeParser) closing(want json.Delim) error {
	tok, err := p.decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return p.syntaxError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return errors.NewParsingError(
			fmt.Sprintf("expected %q at offset %d", want, p.decoder.InputOffset()),
			errors.ErrInvalidJSON,
		)
	}
	return nil
}

func (p *treeParser) syntaxError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

func wrapSyntax(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return fmt.Errorf("%w: %s", errors.ErrInvalidJSON, syntaxError.Error())
	}
	return err
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Value, error) {
	return ParseString(string(data))
}

// ReadFile returns the contents of a JSON file, rejecting an empty path, a
// missing file and an empty file.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	return data, nil
}
