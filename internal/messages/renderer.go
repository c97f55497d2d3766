// Package messages resolves player-facing text through externally
// configurable templates. The core never constructs user-visible copy ad
// hoc; every broadcast and direct message goes through a Renderer so all
// wording stays in config.
package messages

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

//go:generate mockgen -destination=mock/mock.go -package=messagesmock github.com/bixgamer707/hordes/internal/messages Renderer

// Renderer renders the template at a dotted key path with positional
// substitutions. Placeholders are written {0}, {1}, ... in the template.
type Renderer interface {
	Render(key string, args ...any) string
}

// TemplateRenderer is a Renderer over a flat key -> template map, normally
// loaded from messages.yaml. Swap replaces the whole map on config reload.
type TemplateRenderer struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewTemplateRenderer builds a renderer from already-flattened templates.
func NewTemplateRenderer(templates map[string]string) *TemplateRenderer {
	if templates == nil {
		templates = make(map[string]string)
	}
	return &TemplateRenderer{templates: templates}
}

// Swap replaces the template map.
func (r *TemplateRenderer) Swap(templates map[string]string) {
	if templates == nil {
		templates = make(map[string]string)
	}
	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()
}

// Render resolves key and substitutes positional args. A missing key is
// logged and rendered as the key itself so broken config stays visible
// without faulting the caller.
func (r *TemplateRenderer) Render(key string, args ...any) string {
	r.mu.RLock()
	tmpl, ok := r.templates[key]
	r.mu.RUnlock()
	if !ok {
		slog.Warn("missing message template", "key", key)
		return key
	}

	out := tmpl
	for i, arg := range args {
		out = strings.ReplaceAll(out, fmt.Sprintf("{%d}", i), fmt.Sprint(arg))
	}
	return out
}

// Flatten converts a nested YAML document into dotted key paths, e.g.
// join: {cooldown: "..."} becomes "join.cooldown". Non-string leaves are
// stringified.
func Flatten(doc map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out map[string]string, prefix string, doc map[string]any) {
	for k, v := range doc {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenInto(out, path, val)
		case string:
			out[path] = val
		default:
			out[path] = fmt.Sprint(val)
		}
	}
}
