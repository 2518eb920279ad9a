package filter

import (
	"context"
	"strings"

	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/internal/markup"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// DefaultClassPrefix is prepended to the family by ClassHandler.
const DefaultClassPrefix = "local-math-"

// ClassHandler returns a handler that adds "<prefix><family>" to the
// wrapper's class list, so stylesheets and client renderers can target one
// family. An empty prefix uses DefaultClassPrefix.
func ClassHandler(prefix string) interfaces.FamilyHandler {
	if prefix == "" {
		prefix = DefaultClassPrefix
	}
	return interfaces.FamilyHandlerFunc(func(_ context.Context, node interfaces.WrapperNode) error {
		class := prefix + node.Family()
		existing, _ := node.Attribute("class")
		for _, field := range strings.Fields(existing) {
			if field == class {
				return nil
			}
		}
		if existing = strings.TrimSpace(existing); existing != "" {
			class = existing + " " + class
		}
		node.SetAttribute("class", class)
		return nil
	})
}

// mergeHandlers overlays per-call handlers on the configured ones. Family
// keys are normalised; nil handlers remove an entry.
func mergeHandlers(base, override map[string]interfaces.FamilyHandler) map[string]interfaces.FamilyHandler {
	out := make(map[string]interfaces.FamilyHandler, len(base)+len(override))
	for family, handler := range base {
		if handler != nil {
			out[normalizeKey(family)] = handler
		}
	}
	for family, handler := range override {
		key := normalizeKey(family)
		if handler == nil {
			delete(out, key)
			continue
		}
		out[key] = handler
	}
	return out
}

func normalizeKey(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// dispatch runs the family handler for every tagged wrapper. wrappers are
// expected in reverse document order, which is the order the rewriter
// produces them in. Handler failures are logged and counted only.
func (s *Service) dispatch(ctx context.Context, tree *markup.Tree, wrappers []wrapped, handlers map[string]interfaces.FamilyHandler, logger interfaces.Logger) int {
	failures := 0
	for _, w := range wrappers {
		if w.family == "" {
			continue
		}
		handler, ok := handlers[w.family]
		if !ok {
			continue
		}
		if err := handler.Process(ctx, &wrapperNode{tree: tree, node: w.node, family: w.family}); err != nil {
			failures++
			s.metrics.IncrementHandlerError(w.family)
			logging.WithFields(logging.WithFamily(logger, w.family), map[string]any{
				"error": err,
			}).Warn("filter.handler.failed")
		}
	}
	return failures
}
