package di_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-mathfilter/internal/cache"
	filtercmd "github.com/goliatone/go-mathfilter/internal/commands/filter"
	"github.com/goliatone/go-mathfilter/internal/commands/fixtures"
	"github.com/goliatone/go-mathfilter/internal/di"
	"github.com/goliatone/go-mathfilter/internal/runtimeconfig"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

type memoryCache struct {
	values map[string]any
	sets   int
}

func (m *memoryCache) Get(_ context.Context, key string) (any, error) {
	if value, ok := m.values[key]; ok {
		return value, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if m.values == nil {
		m.values = map[string]any{}
	}
	m.values[key] = value
	m.sets++
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryCache) Clear(context.Context) error {
	m.values = nil
	return nil
}

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.ContentDir = t.TempDir()
	return cfg
}

func TestNewContainerFiltersWithConfiguredFamilies(t *testing.T) {
	container, err := di.NewContainer(testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	got, err := container.FilterService().Filter(context.Background(), "<p>$x$ and `y`</p>", interfaces.FilterOptions{})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := `<p><math-span family="tex">x</math-span> and ` + "`y`" + `</p>`
	if got != want {
		t.Fatalf("expected asciimath disabled by default\nwant %s\ngot  %s", want, got)
	}

	if families := container.Registry().Families(); len(families) != 2 || families[0] != "tex" || families[1] != "asciimath" {
		t.Fatalf("unexpected families %v", families)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Families = nil

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrFamiliesRequired) {
		t.Fatalf("expected ErrFamiliesRequired, got %v", err)
	}
}

func TestNewContainerAppliesRewriteSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.WrapperTag = "m-box"
	cfg.FamilyAttribute = "data-family"
	cfg.DisabledFamilies = nil
	cfg.Handlers.ClassNames = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	got, err := container.FilterService().Filter(context.Background(), "<p>`y`</p>", interfaces.FilterOptions{})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := `<p><m-box data-family="asciimath" class="local-math-asciimath">y</m-box></p>`
	if got != want {
		t.Fatalf("want %s\ngot  %s", want, got)
	}
}

func TestNewContainerFamilyHandlerOverridesClassHandler(t *testing.T) {
	cfg := testConfig(t)
	cfg.Handlers.ClassNames = true

	handler := interfaces.FamilyHandlerFunc(func(_ context.Context, node interfaces.WrapperNode) error {
		node.SetAttribute("data-src", node.Text())
		return nil
	})
	container, err := di.NewContainer(cfg, di.WithFamilyHandler("tex", handler))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	got, err := container.FilterService().Filter(context.Background(), "<p>$x$</p>", interfaces.FilterOptions{})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if want := `<p><math-span family="tex" data-src="x">x</math-span></p>`; got != want {
		t.Fatalf("want %s\ngot  %s", want, got)
	}
}

func TestNewContainerCacheWiring(t *testing.T) {
	cfg := testConfig(t)
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.CacheProvider() != nil {
		t.Fatal("expected no cache when disabled")
	}

	cfg.Cache.Enabled = true
	container, err = di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, ok := container.CacheProvider().(*cache.Memory); !ok {
		t.Fatalf("expected in-memory cache, got %T", container.CacheProvider())
	}

	custom := &memoryCache{}
	container, err = di.NewContainer(testConfig(t), di.WithCacheProvider(custom))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, err := container.FilterService().Filter(context.Background(), "<p>$x$</p>", interfaces.FilterOptions{}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if custom.sets != 1 {
		t.Fatalf("expected custom cache populated once, got %d", custom.sets)
	}
}

func TestNewContainerMarkdownService(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Markdown.ContentDir, "page.md"), []byte("---\ntitle: Page\n---\nArea is $r^2$.\n"), 0o644); err != nil {
		t.Fatalf("write markdown: %v", err)
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	doc, err := container.MarkdownService().Load(context.Background(), "page.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(string(doc.BodyHTML), `<math-span family="tex">r^2</math-span>`) {
		t.Fatalf("expected filtered markdown, got %s", doc.BodyHTML)
	}
}

func TestNewContainerMissingContentDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Markdown.ContentDir = filepath.Join(cfg.Markdown.ContentDir, "missing")

	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatal("expected error for missing content directory")
	}

	container, err := di.NewContainer(cfg, di.WithoutMarkdown())
	if err != nil {
		t.Fatalf("NewContainer without markdown: %v", err)
	}
	if container.MarkdownService() != nil {
		t.Fatal("expected markdown service skipped")
	}
	if container.Commands().RenderMarkdown != nil {
		t.Fatal("expected markdown commands skipped")
	}
}

func TestNewContainerRegistersCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	var out bytes.Buffer

	container, err := di.NewContainer(testConfig(t), di.WithCommandRegistry(reg), di.WithCommandOutput(&out))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if len(reg.Handlers) != 3 {
		t.Fatalf("expected three command handlers registered, got %d", len(reg.Handlers))
	}

	input := filepath.Join(t.TempDir(), "in.html")
	if err := os.WriteFile(input, []byte(`<p>\(a\)</p>`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := container.Commands().FilterFile.Execute(context.Background(), filtercmd.FilterFileCommand{Input: input}); err != nil {
		t.Fatalf("execute filter command: %v", err)
	}
	if want := `<p><math-span family="tex">a</math-span></p>`; out.String() != want {
		t.Fatalf("want %s\ngot  %s", want, out.String())
	}
}
