package filtercmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	filterFileMessageType      = "mathfilter.filter.file"
	renderMarkdownMessageType  = "mathfilter.markdown.render"
	renderDirectoryMessageType = "mathfilter.markdown.render_directory"
)

// FilterFileCommand filters one HTML file. An empty Output sends the result
// to the handler's writer.
type FilterFileCommand struct {
	// Input is the HTML fragment file to read.
	Input string `json:"input"`
	// Output is the destination file; empty writes to the handler's writer.
	Output string `json:"output,omitempty"`
	// DisabledFamilies adds families to the configured disabled set for this run.
	DisabledFamilies []string `json:"disabled_families,omitempty"`
	// SkipHandlers leaves wrappers untouched by family handlers.
	SkipHandlers bool `json:"skip_handlers,omitempty"`
}

// Type implements command.Message.
func (FilterFileCommand) Type() string { return filterFileMessageType }

// Validate ensures an input path is present before handlers execute.
func (cmd FilterFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Input, validation.Required, validation.By(notBlank(
			"mathfilter.filter.file.input_required", "input is required",
		))),
		validation.Field(&cmd.DisabledFamilies, validation.Each(validation.By(notBlank(
			"mathfilter.filter.file.family_blank", "disabled family must not be blank",
		)))),
	)
}

// RenderMarkdownCommand renders one Markdown document, front matter
// included, and filters the resulting HTML.
type RenderMarkdownCommand struct {
	// Path is relative to the Markdown service base path.
	Path string `json:"path"`
	// Output is the destination file; empty writes to the handler's writer.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (RenderMarkdownCommand) Type() string { return renderMarkdownMessageType }

// Validate ensures a document path is present before handlers execute.
func (cmd RenderMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank(
			"mathfilter.markdown.render.path_required", "path is required",
		))),
	)
}

// RenderDirectoryCommand renders every Markdown document under Directory and
// writes one .html file per document below OutputDir.
type RenderDirectoryCommand struct {
	Directory string `json:"directory"`
	OutputDir string `json:"output_dir"`
}

// Type implements command.Message.
func (RenderDirectoryCommand) Type() string { return renderDirectoryMessageType }

// Validate ensures both directories are present before handlers execute.
func (cmd RenderDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(notBlank(
			"mathfilter.markdown.render_directory.directory_required", "directory is required",
		))),
		validation.Field(&cmd.OutputDir, validation.Required, validation.By(notBlank(
			"mathfilter.markdown.render_directory.output_required", "output directory is required",
		))),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
