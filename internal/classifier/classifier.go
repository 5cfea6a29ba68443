// Package classifier finds string fields in a JSON document that most likely
// hold human-readable prose rather than identifiers, timestamps, codes or
// slugs. The decision is purely syntactic: a value is rejected when it has
// the shape of a machine token, accepted when its property name is a known
// text field, and otherwise judged by spacing, punctuation, length and
// markdown markers.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/parser"
	"github.com/mcncl/jsonlens/internal/pointer"
)

// ErrorPrefix starts the single result element reported for unparseable input.
const ErrorPrefix = "ERROR:"

// Exclusion shapes, tested in this order.
var (
	hexIDRegex       = regexp.MustCompile(`^[0-9a-f]{24}$`)
	guidRegex        = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	isoDateTimeRegex = regexp.MustCompile(`^\p{Nd}{4}-\p{Nd}{2}-\p{Nd}{2}T\p{Nd}{2}:\p{Nd}{2}:`)
	numericRegex     = regexp.MustCompile(`^\p{Nd}+$`)
	slugRegex        = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)+$`)
	acronymRegex     = regexp.MustCompile(`^[A-Z]{2,10}$`)
	fileNameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_/.-]+\.[a-zA-Z0-9]{1,5}$`)
)

// Rule names the heuristic that decided a verdict.
type Rule string

const (
	RuleBlank       Rule = "blank"
	RuleHexID       Rule = "hex-id"
	RuleGUID        Rule = "guid"
	RuleISODateTime Rule = "iso-datetime"
	RuleNumeric     Rule = "numeric"
	RuleSlug        Rule = "slug"
	RuleAcronym     Rule = "acronym"
	RulePath        Rule = "path"
	RuleShortToken  Rule = "short-token"
	RuleNameHint    Rule = "name-hint"
	RuleSentence    Rule = "sentence"
	RuleLongText    Rule = "long-text"
	RuleMarkdown    Rule = "markdown"
	RuleNoSignal    Rule = "no-signal"
)

// Verdict is the classification of one string leaf.
type Verdict struct {
	Path  string `json:"path"`
	Human bool   `json:"human"`
	Rule  Rule   `json:"rule"`
}

type exclusion struct {
	rule  Rule
	match func(string) bool
}

var exclusions = []exclusion{
	{RuleHexID, hexIDRegex.MatchString},
	{RuleGUID, guidRegex.MatchString},
	{RuleISODateTime, isoDateTimeRegex.MatchString},
	{RuleNumeric, numericRegex.MatchString},
	{RuleSlug, slugRegex.MatchString},
	{RuleAcronym, acronymRegex.MatchString},
	{RulePath, looksLikePath},
}

// Classifier applies the human-text heuristics. It holds no per-call state
// and is safe for concurrent use.
type Classifier struct {
	hints          map[string]struct{}
	minTokenLength int
	longTextLength int
}

// New creates a Classifier from configuration.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{
		hints:          cfg.NormalizedHints(),
		minTokenLength: cfg.MinTokenLength,
		longTextLength: cfg.LongTextLength,
	}
}

// NewDefault creates a Classifier with the built-in hints and thresholds.
func NewDefault() *Classifier {
	return New(config.NewConfig().Classifier)
}

// IsHumanText reports whether value, found at path, looks like prose.
func (c *Classifier) IsHumanText(path, value string) bool {
	return c.Explain(path, value).Human
}

// Explain classifies value and reports which rule decided.
func (c *Classifier) Explain(path, value string) Verdict {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Verdict{Path: path, Rule: RuleBlank}
	}

	for _, ex := range exclusions {
		if ex.match(trimmed) {
			return Verdict{Path: path, Rule: ex.rule}
		}
	}

	hasSpace := strings.ContainsRune(trimmed, ' ')
	length := utf8.RuneCountInString(trimmed)
	if length < c.minTokenLength && !hasSpace {
		return Verdict{Path: path, Rule: RuleShortToken}
	}

	if c.hasNameHint(path) {
		return Verdict{Path: path, Human: true, Rule: RuleNameHint}
	}

	switch {
	case hasSpace && strings.ContainsAny(trimmed, ".,!?;:"):
		return Verdict{Path: path, Human: true, Rule: RuleSentence}
	case hasSpace && length >= c.longTextLength:
		return Verdict{Path: path, Human: true, Rule: RuleLongText}
	case hasMarkdown(trimmed):
		return Verdict{Path: path, Human: true, Rule: RuleMarkdown}
	}
	return Verdict{Path: path, Rule: RuleNoSignal}
}

func (c *Classifier) hasNameHint(path string) bool {
	for _, segment := range pointer.Split(path) {
		if segment == "" {
			continue
		}
		if _, ok := c.hints[strings.ToLower(segment)]; ok {
			return true
		}
	}
	return false
}

func looksLikePath(s string) bool {
	return strings.HasPrefix(s, "/") || strings.Contains(s, `\`) || fileNameRegex.MatchString(s)
}

func hasMarkdown(s string) bool {
	// "**" implies "*"; both are listed to mirror the marker set.
	return strings.Contains(s, "**") ||
		strings.Contains(s, "__") ||
		strings.Contains(s, "*") ||
		strings.Contains(s, "#") ||
		strings.Contains(s, "\n")
}

// Classify returns the paths of string leaves in root that look like prose,
// in pre-order with object members in document order.
func (c *Classifier) Classify(ctx context.Context, root models.Value) ([]string, error) {
	paths := make([]string, 0)
	err := c.walk(ctx, root, "", func(v Verdict) {
		if v.Human {
			paths = append(paths, v.Path)
		}
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ExplainAll returns a verdict for every string leaf in root.
func (c *Classifier) ExplainAll(ctx context.Context, root models.Value) ([]Verdict, error) {
	verdicts := make([]Verdict, 0)
	err := c.walk(ctx, root, "", func(v Verdict) {
		verdicts = append(verdicts, v)
	})
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}

func (c *Classifier) walk(ctx context.Context, node models.Value, path string, visit func(Verdict)) error {
	switch node.Kind {
	case models.Object:
		if err := ctx.Err(); err != nil {
			return errors.NewProcessingError("classification interrupted", err)
		}
		for _, m := range node.Members {
			if m.Value.IsNull() {
				continue
			}
			if err := c.walk(ctx, m.Value, pointer.Append(path, m.Key), visit); err != nil {
				return err
			}
		}
	case models.Array:
		if err := ctx.Err(); err != nil {
			return errors.NewProcessingError("classification interrupted", err)
		}
		for i, item := range node.Items {
			if item.IsNull() {
				continue
			}
			if err := c.walk(ctx, item, pointer.AppendIndex(path, i), visit); err != nil {
				return err
			}
		}
	case models.String:
		visit(c.Explain(path, node.Str))
	}
	return nil
}

// HumanFields parses document and returns the prose paths as a compact JSON
// array of strings. It never fails: a parse or processing failure is
// reported as a single "ERROR:<message>" element, and a null document
// yields [].
func (c *Classifier) HumanFields(ctx context.Context, document string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(errors.NewProcessingError(fmt.Sprintf("unexpected failure: %v", r), nil))
		}
	}()

	root, err := parser.ParseString(document)
	if err != nil {
		return errorResult(err)
	}
	if root.IsNull() {
		return "[]"
	}

	paths, err := c.Classify(ctx, root)
	if err != nil {
		return errorResult(err)
	}

	encoded, err := encodeStrings(paths)
	if err != nil {
		return errorResult(errors.NewOutputError("failed to encode field paths", err))
	}
	return encoded
}

func errorResult(err error) string {
	encoded, encErr := encodeStrings([]string{ErrorPrefix + errors.Describe(err)})
	if encErr != nil {
		return `["ERROR:failed to encode classification error"]`
	}
	return encoded
}

func encodeStrings(values []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
