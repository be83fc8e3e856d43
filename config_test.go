package flicker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FPS != DefaultFPS {
		t.Fatalf("expected FPS %d, got %d", DefaultFPS, cfg.FPS)
	}
	if !cfg.AlternateScreen || !cfg.HideCursor {
		t.Fatal("expected alternate screen and hide cursor on by default")
	}
	if cfg.MouseTracking != MouseTrackingNone {
		t.Fatalf("expected mouse tracking off by default, got %v", cfg.MouseTracking)
	}
	if cfg.RenderBufferThreshold != DefaultRenderBufferThreshold {
		t.Fatalf("expected default render buffer threshold, got %d", cfg.RenderBufferThreshold)
	}
	if cfg.MessageQueueCap != DefaultMessageQueueCap {
		t.Fatalf("expected default queue cap, got %d", cfg.MessageQueueCap)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverridesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flicker.toml")
	content := "fps = 30\nmouse_tracking = \"all\"\nalternate_screen = false\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FPS != 30 {
		t.Fatalf("expected fps 30, got %d", cfg.FPS)
	}
	if cfg.MouseTracking != MouseTrackingAll {
		t.Fatalf("expected mouse tracking all, got %v", cfg.MouseTracking)
	}
	if cfg.AlternateScreen {
		t.Fatal("expected alternate screen overridden to false")
	}
	if cfg.HideCursor != DefaultConfig().HideCursor {
		t.Fatal("expected unspecified keys to retain defaults")
	}
}

func TestLoadConfigBadTOMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestConfigTerminalOptionsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MouseTracking = MouseTrackingDrag
	cfg.Backend = BackendCooked
	opts := cfg.TerminalOptions()
	if opts.MouseTracking != MouseDrag {
		t.Fatalf("expected MouseDrag, got %v", opts.MouseTracking)
	}
	if opts.Backend != BackendCooked {
		t.Fatalf("expected backend to carry over, got %v", opts.Backend)
	}
	if opts.AlternateScreen != cfg.AlternateScreen || opts.HideCursor != cfg.HideCursor {
		t.Fatal("expected alternate screen/hide cursor to carry over")
	}
}
