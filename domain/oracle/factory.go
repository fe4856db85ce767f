package oracle

import (
	"log/slog"
	"strings"

	"github.com/soocke/clickmask-go/config"
)

// ColorWalkOptionsFromConfig maps the config onto the in-process backend options.
func ColorWalkOptionsFromConfig(cfg *config.Config) ColorWalkOptions {
	return ColorWalkOptions{Tolerance: cfg.ColorTolerance, MaxSide: cfg.MaxEmbedSide}
}

// HTTPOptionsFromConfig maps the config onto the model server options.
func HTTPOptionsFromConfig(cfg *config.Config) HTTPOptions {
	return HTTPOptions{
		Endpoint:                cfg.OracleEndpoint,
		Timeout:                 cfg.OracleTimeout(),
		Threads:                 cfg.Threads,
		MaskThreshold:           cfg.MaskThreshold,
		IoUThreshold:            cfg.IoUThreshold,
		StabilityScoreThreshold: cfg.StabilityScoreThreshold,
		StabilityScoreOffset:    cfg.StabilityScoreOffset,
	}
}

// NewBackend builds the backend named by cfg.OracleBackend. Unknown names fall
// back to the in-process backend.
func NewBackend(cfg *config.Config, logger *slog.Logger) Backend {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch cfg.OracleBackend {
	case config.BackendHTTP:
		return NewHTTPBackend(HTTPOptionsFromConfig(cfg), logger)
	default:
		return NewColorWalk(ColorWalkOptionsFromConfig(cfg))
	}
}

// Reconfiguration reports what applying a config means for embeddings made
// before it.
type Reconfiguration int

const (
	// Reconfigured: the backend took the options, embeddings stay valid.
	Reconfigured Reconfiguration = iota
	// NeedsReembed: the backend took the options but earlier embeddings refer
	// to another server or another resolution.
	NeedsReembed
	// NeedsNewBackend: cfg names another backend kind, b was left untouched.
	NeedsNewBackend
)

func (r Reconfiguration) String() string {
	switch r {
	case Reconfigured:
		return "reconfigured"
	case NeedsReembed:
		return "needs-reembed"
	case NeedsNewBackend:
		return "needs-new-backend"
	default:
		return "unknown"
	}
}

// Reconfigure pushes cfg into b when it names the same backend kind.
func Reconfigure(b Backend, cfg *config.Config) Reconfiguration {
	switch be := b.(type) {
	case *ColorWalk:
		if cfg.OracleBackend != config.BackendColorWalk {
			return NeedsNewBackend
		}
		prev := *be.opts.Load()
		be.SetOptions(ColorWalkOptionsFromConfig(cfg))
		if be.opts.Load().MaxSide != prev.MaxSide {
			return NeedsReembed
		}
	case *HTTPBackend:
		if cfg.OracleBackend != config.BackendHTTP {
			return NeedsNewBackend
		}
		prev := *be.opts.Load()
		next := HTTPOptionsFromConfig(cfg)
		be.SetOptions(next)
		if normalizeEndpoint(next.Endpoint) != normalizeEndpoint(prev.Endpoint) {
			return NeedsReembed
		}
	default:
		return NeedsNewBackend
	}
	return Reconfigured
}

func normalizeEndpoint(e string) string {
	return strings.TrimRight(strings.TrimSpace(e), "/")
}
