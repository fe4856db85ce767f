package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Oracle backend names.
const (
	BackendColorWalk = "colorwalk"
	BackendHTTP      = "http"
)

// Config holds runtime configuration for the oracle, the overlay and the window.
// Fields are loaded from a JSON file and may be edited from the settings panel.
type Config struct {
	Debug    bool `json:"debug"`
	DarkMode bool `json:"dark_mode"`

	// Canvas
	CanvasWidth  int  `json:"canvas_width"`
	CanvasHeight int  `json:"canvas_height"`
	AllowUpscale bool `json:"allow_upscale"`

	// Oracle
	OracleBackend   string  `json:"oracle_backend"`
	OracleEndpoint  string  `json:"oracle_endpoint"`
	OracleTimeoutMs int     `json:"oracle_timeout_ms"`
	MaxEmbedSide    int     `json:"max_embed_side"`
	ColorTolerance  float64 `json:"color_tolerance"`

	// Model parameters forwarded to the model server.
	Threads                 int     `json:"n_threads"`
	MaskThreshold           float64 `json:"mask_threshold"`
	IoUThreshold            float64 `json:"iou_threshold"`
	StabilityScoreThreshold float64 `json:"stability_score_threshold"`
	StabilityScoreOffset    float64 `json:"stability_score_offset"`

	// Overlay
	MaskColor       string  `json:"mask_color"`
	MaskAlpha       int     `json:"mask_alpha"`
	PositiveColor   string  `json:"positive_color"`
	NegativeColor   string  `json:"negative_color"`
	BackgroundColor string  `json:"background_color"`
	MarkerRadius    float64 `json:"marker_radius"`

	// Last directory used by the file dialogs.
	LastDir string `json:"last_dir"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                   false,
		CanvasWidth:             800,
		CanvasHeight:            600,
		AllowUpscale:            true,
		OracleBackend:           BackendColorWalk,
		OracleEndpoint:          "http://127.0.0.1:8765",
		OracleTimeoutMs:         30000,
		MaxEmbedSide:            1024,
		ColorTolerance:          0.12,
		Threads:                 10,
		MaskThreshold:           0.0,
		IoUThreshold:            0.88,
		StabilityScoreThreshold: 0.95,
		StabilityScoreOffset:    1.0,
		MaskColor:               "#87ceeb",
		MaskAlpha:               128,
		PositiveColor:           "#00ff00",
		NegativeColor:           "#ff0000",
		BackgroundColor:         "#cccccc",
		MarkerRadius:            5,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.CanvasWidth < 64 {
		c.CanvasWidth = d.CanvasWidth
	}
	if c.CanvasHeight < 64 {
		c.CanvasHeight = d.CanvasHeight
	}
	c.OracleBackend = strings.ToLower(strings.TrimSpace(c.OracleBackend))
	if c.OracleBackend != BackendColorWalk && c.OracleBackend != BackendHTTP {
		c.OracleBackend = d.OracleBackend
	}
	if strings.TrimSpace(c.OracleEndpoint) == "" {
		c.OracleEndpoint = d.OracleEndpoint
	}
	if c.OracleTimeoutMs <= 0 {
		c.OracleTimeoutMs = d.OracleTimeoutMs
	}
	if c.MaxEmbedSide < 16 {
		c.MaxEmbedSide = d.MaxEmbedSide
	}
	if c.ColorTolerance <= 0 || c.ColorTolerance > 2 {
		c.ColorTolerance = d.ColorTolerance
	}
	if c.Threads <= 0 {
		c.Threads = d.Threads
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		c.IoUThreshold = d.IoUThreshold
	}
	if c.StabilityScoreThreshold < 0 || c.StabilityScoreThreshold > 1 {
		c.StabilityScoreThreshold = d.StabilityScoreThreshold
	}
	if c.MaskAlpha < 0 || c.MaskAlpha > 255 {
		c.MaskAlpha = d.MaskAlpha
	}
	if c.MarkerRadius <= 0 || c.MarkerRadius > 50 {
		c.MarkerRadius = d.MarkerRadius
	}
	fixColor := func(v *string, def string) {
		if _, err := colorful.Hex(strings.TrimSpace(*v)); err != nil {
			*v = def
			return
		}
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
	fixColor(&c.MaskColor, d.MaskColor)
	fixColor(&c.PositiveColor, d.PositiveColor)
	fixColor(&c.NegativeColor, d.NegativeColor)
	fixColor(&c.BackgroundColor, d.BackgroundColor)
	return nil
}

// OracleTimeout returns the per-call oracle deadline.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutMs) * time.Millisecond
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
