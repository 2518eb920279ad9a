package mathfilter_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-mathfilter"
)

func TestConfigValidateRequiresFamilies(t *testing.T) {
	cfg := mathfilter.DefaultConfig()
	cfg.Families = nil
	if err := cfg.Validate(); !errors.Is(err, mathfilter.ErrFamiliesRequired) {
		t.Fatalf("expected ErrFamiliesRequired, got %v", err)
	}
}

func TestConfigValidateWrapperMustNotBeTransparent(t *testing.T) {
	cfg := mathfilter.DefaultConfig()
	cfg.WrapperTag = "span"

	if err := cfg.Validate(); !errors.Is(err, mathfilter.ErrWrapperTagTransparent) {
		t.Fatalf("expected ErrWrapperTagTransparent, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := mathfilter.DefaultConfig()
	cfg.Logging.Provider = "invalid"

	if err := cfg.Validate(); !errors.Is(err, mathfilter.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestDefaultConfigFamilies(t *testing.T) {
	cfg := mathfilter.DefaultConfig()
	if len(cfg.Families) != 2 || cfg.Families[0].Name != "tex" || cfg.Families[1].Name != "asciimath" {
		t.Fatalf("unexpected default families %+v", cfg.Families)
	}
	if len(cfg.DisabledFamilies) != 1 || cfg.DisabledFamilies[0] != "asciimath" {
		t.Fatalf("expected asciimath disabled by default, got %v", cfg.DisabledFamilies)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathfilter.yaml")
	raw := "disabled_families: \"\"\nwrapper_tag: m-span\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := mathfilter.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.WrapperTag != "m-span" || len(cfg.DisabledFamilies) != 0 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := mathfilter.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, mathfilter.ErrConfigRead) {
		t.Fatalf("expected ErrConfigRead, got %v", err)
	}
}
