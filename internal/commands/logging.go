package commands

import (
	"strings"

	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

const commandModuleRoot = "mathfilter.commands"

// CommandLogger returns the logger for one filter command. Entries are
// published under "mathfilter.commands.<group>" and carry the operation, so
// FilterFile and RenderMarkdown runs can be told apart in one stream.
func CommandLogger(provider interfaces.LoggerProvider, group, operation string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "filter"
	}
	return logging.WithCommand(logging.ModuleLogger(provider, commandModuleRoot+"."+group), group, operation)
}
