package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clickmask.json")
	cfg := DefaultConfig()
	cfg.OracleBackend = BackendHTTP
	cfg.MaskAlpha = 90
	cfg.LastDir = "/tmp/pics"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", cfg, got)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("{not json"), 0o644)
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.MarkerRadius != 5 {
		t.Fatalf("defaults must accompany the error")
	}
}

func TestValidate_Clamps(t *testing.T) {
	c := &Config{
		CanvasWidth:     10,
		OracleBackend:   " HTTP ",
		MaskAlpha:       400,
		MarkerRadius:    -1,
		MaskColor:       "sky blue",
		PositiveColor:   "#00FF00",
		ColorTolerance:  9,
		IoUThreshold:    1.5,
		OracleTimeoutMs: -5,
	}
	_ = c.Validate()
	d := DefaultConfig()
	if c.CanvasWidth != d.CanvasWidth || c.CanvasHeight != d.CanvasHeight {
		t.Fatalf("canvas not clamped: %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.OracleBackend != BackendHTTP {
		t.Fatalf("backend should normalize to http, got %q", c.OracleBackend)
	}
	if c.MaskAlpha != 128 || c.MarkerRadius != 5 || c.ColorTolerance != d.ColorTolerance || c.IoUThreshold != 0.88 {
		t.Fatalf("numeric fields not clamped: %+v", c)
	}
	if c.MaskColor != d.MaskColor || c.PositiveColor != "#00ff00" {
		t.Fatalf("colors not normalized: mask=%q positive=%q", c.MaskColor, c.PositiveColor)
	}
	if c.OracleTimeout() != d.OracleTimeout() {
		t.Fatalf("timeout not clamped: %v", c.OracleTimeout())
	}
}
