package oracle

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/soocke/clickmask-go/domain/segment"
)

// Embedding is backend-owned state for one embedded image.
// Bounds reports the source image rectangle the embedding was computed from.
type Embedding interface {
	Bounds() image.Rectangle
}

// Backend is the model side of the oracle boundary. Implementations must be safe
// for use from a single background goroutine; they are never called concurrently
// by Client users that serialize work.
type Backend interface {
	Name() string
	Embed(ctx context.Context, img image.Image) (Embedding, error)
	Infer(ctx context.Context, emb Embedding, points []segment.LabeledPoint) ([]segment.CandidateMask, error)
}

// EmbeddingHandle identifies one successful embedding.
type EmbeddingHandle struct {
	ID        string
	Backend   string
	Width     int
	Height    int
	CreatedAt time.Time
	emb       Embedding
}

// Client adapts a Backend to the embed-once, infer-many contract. It never retries.
type Client struct {
	backend Backend
	logger  *slog.Logger
	metrics metrics

	mu     sync.Mutex
	latest *EmbeddingHandle
}

// NewClient wraps backend.
func NewClient(backend Backend, logger *slog.Logger) *Client {
	return &Client{backend: backend, logger: logger}
}

// Backend returns the wrapped backend name.
func (c *Client) Backend() string {
	if c == nil || c.backend == nil {
		return ""
	}
	return c.backend.Name()
}

// Latest returns the most recent successful embedding, if any.
func (c *Client) Latest() *EmbeddingHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Embed computes the embedding for img. The previous handle is dropped as soon as
// the call starts; it belongs to a different image.
func (c *Client) Embed(ctx context.Context, img image.Image) (*EmbeddingHandle, error) {
	c.mu.Lock()
	c.latest = nil
	c.mu.Unlock()
	if img == nil || img.Bounds().Empty() {
		return nil, segment.ModelError("embed", errors.New("empty image"))
	}
	start := time.Now()
	emb, err := c.backend.Embed(ctx, img)
	elapsed := time.Since(start)
	c.metrics.observeEmbed(elapsed, err)
	if err != nil {
		c.log().Error("oracle embed", "backend", c.backend.Name(), "error", err, "elapsed", elapsed)
		return nil, segment.ModelError("embed", err)
	}
	if emb == nil {
		return nil, segment.ModelError("embed", errors.New("backend returned no embedding"))
	}
	b := emb.Bounds()
	h := &EmbeddingHandle{
		ID:        uuid.NewString(),
		Backend:   c.backend.Name(),
		Width:     b.Dx(),
		Height:    b.Dy(),
		CreatedAt: time.Now(),
		emb:       emb,
	}
	c.mu.Lock()
	c.latest = h
	c.mu.Unlock()
	c.log().Info("oracle embed", "backend", h.Backend, "id", h.ID, "width", h.Width, "height", h.Height, "elapsed", elapsed)
	c.logStats()
	return h, nil
}

// Infer asks the backend for candidate masks. A nil handle means the latest
// embedding. Empty prompts are rejected before reaching the backend.
func (c *Client) Infer(ctx context.Context, h *EmbeddingHandle, points []segment.LabeledPoint) ([]segment.CandidateMask, error) {
	if len(points) == 0 {
		return nil, segment.ErrEmptyPrompt
	}
	if h == nil {
		h = c.Latest()
	}
	if h == nil || h.emb == nil {
		return nil, segment.ErrEmbeddingNotReady
	}
	start := time.Now()
	cands, err := c.backend.Infer(ctx, h.emb, points)
	if err == nil && len(cands) == 0 {
		err = segment.ErrNoCandidates
	}
	elapsed := time.Since(start)
	c.metrics.observeInfer(elapsed, err)
	if err != nil {
		c.log().Error("oracle infer", "backend", h.Backend, "id", h.ID, "points", len(points), "error", err)
		return nil, segment.ModelError("infer", err)
	}
	c.log().Debug("oracle infer", "backend", h.Backend, "id", h.ID, "points", len(points), "candidates", len(cands), "elapsed", elapsed)
	c.logStats()
	return cands, nil
}

// Stats returns call counters and latencies.
func (c *Client) Stats() Stats { return c.metrics.snapshot() }

func (c *Client) logStats() {
	if c.logger == nil {
		return
	}
	s := c.Stats()
	c.logger.Debug("oracle.stats",
		"embeds", s.Embeds,
		"infers", s.Infers,
		"failures", s.Failures,
		"avg_embed", s.AvgEmbed,
		"avg_infer", s.AvgInfer,
	)
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}
