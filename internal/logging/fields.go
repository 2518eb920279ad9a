package logging

import (
	"strings"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

const (
	fieldRunID        = "filter_run"
	fieldFamily       = "family"
	fieldDocumentRef  = "document"
	fieldCommandGroup = "command_group"
	fieldOperation    = "operation"
)

// WithFields attaches fields to logger when it implements FieldsLogger.
// Nil values and blank strings are dropped, so optional identifiers such as
// a document path can be passed unconditionally.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}

	kept := make(map[string]any, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			kept[key] = v
		default:
			kept[key] = value
		}
	}
	if len(kept) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(kept)
}

// WithFilterRun tags the logger with the run identifier and, when known, the
// document being filtered.
func WithFilterRun(logger interfaces.Logger, runID, document string) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldRunID:       runID,
		fieldDocumentRef: document,
	})
}

// WithFamily tags the logger with a delimiter family.
func WithFamily(logger interfaces.Logger, family string) interfaces.Logger {
	return WithFields(logger, map[string]any{fieldFamily: family})
}

// WithCommand tags the logger with the command group and the operation a
// filter command performs, e.g. "markdown" and "markdown.render".
func WithCommand(logger interfaces.Logger, group, operation string) interfaces.Logger {
	return WithFields(logger, map[string]any{
		"component":       "command",
		fieldCommandGroup: group,
		fieldOperation:    operation,
	})
}
