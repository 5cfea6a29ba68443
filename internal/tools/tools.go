// Package tools exposes the diff engine and the human-field classifier as
// named tools that an agent host can list and call with string arguments.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mcncl/jsonlens/internal/classifier"
	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/diff"
	"github.com/mcncl/jsonlens/internal/errors"
)

// Tool names
const (
	JSONDiffName    = "json_diff"
	HumanFieldsName = "json_human_fields"
)

// Parameter describes one string argument of a tool.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is a callable unit. Invoke returns the tool's JSON result text; an
// error means the call itself was malformed, not that the tool's input was.
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Invoke(ctx context.Context, args map[string]string) (string, error)
}

// Descriptor is the listing form of a tool.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Describe returns the descriptor of t.
func Describe(t Tool) Descriptor {
	return Descriptor{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()}
}

// JSONDiffTool wraps diff.JSONDiff.
type JSONDiffTool struct{}

func (JSONDiffTool) Name() string { return JSONDiffName }

func (JSONDiffTool) Description() string {
	return "Produces a JSON Patch-like diff array between the original and updated JSON objects. " +
		"Each entry has op, path, and from/to (or reason) fields as applicable."
}

func (JSONDiffTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "originalJson", Description: "Original JSON object string", Required: true},
		{Name: "updatedJson", Description: "Updated (corrected) JSON object string", Required: true},
	}
}

func (JSONDiffTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	return diff.JSONDiff(ctx, args["originalJson"], args["updatedJson"]), nil
}

// HumanFieldsTool wraps Classifier.HumanFields.
type HumanFieldsTool struct {
	Classifier *classifier.Classifier
}

func (HumanFieldsTool) Name() string { return HumanFieldsName }

func (HumanFieldsTool) Description() string {
	return "Returns a JSON array of JSON Pointer paths that likely contain human language text " +
		"within the provided JSON object."
}

func (HumanFieldsTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "originalJson", Description: "Original JSON object string", Required: true},
	}
}

func (t HumanFieldsTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	c := t.Classifier
	if c == nil {
		c = classifier.NewDefault()
	}
	return c.HumanFields(ctx, args["originalJson"]), nil
}

// Registry holds tools by name. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// NewDefaultRegistry creates a registry holding json_diff and
// json_human_fields, the latter configured from cfg.
func NewDefaultRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	// Names are distinct constants, so registration cannot collide.
	_ = r.Register(JSONDiffTool{})
	_ = r.Register(HumanFieldsTool{Classifier: classifier.New(cfg.Classifier)})
	return r
}

// Register adds t. Registering a second tool under the same name fails.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return errors.NewToolError(fmt.Sprintf("tool '%s' is already registered", t.Name()), nil)
	}
	r.tools[t.Name()] = t
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns descriptors of all tools sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, Describe(t))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Call invokes the named tool after checking its required arguments.
func (r *Registry) Call(ctx context.Context, name string, args map[string]string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", errors.NewToolError(fmt.Sprintf("no tool named '%s'", name), errors.ErrUnknownTool)
	}
	for _, p := range t.Parameters() {
		if _, present := args[p.Name]; p.Required && !present {
			return "", errors.NewToolError(
				fmt.Sprintf("tool '%s' requires argument '%s'", name, p.Name),
				errors.ErrMissingArgument,
			)
		}
	}

	start := time.Now()
	result, err := t.Invoke(ctx, args)
	if err != nil {
		r.logger.Warn("Tool call failed", zap.String("tool", name), zap.Error(err))
		return "", err
	}
	r.logger.Debug("Tool call completed",
		zap.String("tool", name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("result_bytes", len(result)))
	return result, nil
}
