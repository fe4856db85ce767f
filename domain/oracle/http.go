package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/soocke/clickmask-go/domain/codec"
	"github.com/soocke/clickmask-go/domain/segment"
)

// HTTPOptions configures the remote model server backend. The model parameters
// are forwarded on every inference request.
type HTTPOptions struct {
	Endpoint                string
	Timeout                 time.Duration
	Threads                 int
	MaskThreshold           float64
	IoUThreshold            float64
	StabilityScoreThreshold float64
	StabilityScoreOffset    float64
}

// HTTPBackend talks to a same-host model server over a small JSON protocol.
type HTTPBackend struct {
	client *resty.Client
	logger *slog.Logger
	opts   atomic.Pointer[HTTPOptions]
}

type embedRequest struct {
	Image   string `json:"image"`
	Threads int    `json:"n_threads,omitempty"`
}

type embedResponse struct {
	EmbeddingID string `json:"embedding_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type wirePoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label int     `json:"label"`
}

type inferRequest struct {
	EmbeddingID             string      `json:"embedding_id"`
	Points                  []wirePoint `json:"points"`
	Threads                 int         `json:"n_threads,omitempty"`
	MaskThreshold           float64     `json:"mask_threshold"`
	IoUThreshold            float64     `json:"iou_threshold"`
	StabilityScoreThreshold float64     `json:"stability_score_threshold"`
	StabilityScoreOffset    float64     `json:"stability_score_offset"`
}

type wireMask struct {
	PNG   string  `json:"png"`
	Score float64 `json:"score"`
}

type inferResponse struct {
	Masks []wireMask `json:"masks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type remoteEmbedding struct {
	id     string
	bounds image.Rectangle
}

func (e *remoteEmbedding) Bounds() image.Rectangle { return e.bounds }

// NewHTTPBackend builds a backend for opts.Endpoint.
func NewHTTPBackend(opts HTTPOptions, logger *slog.Logger) *HTTPBackend {
	c := resty.New().
		SetBaseURL(opts.Endpoint).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	b := &HTTPBackend{client: c, logger: logger}
	b.opts.Store(&opts)
	return b
}

// SetOptions replaces the model parameters. Endpoint and timeout changes apply
// to the underlying client as well.
func (b *HTTPBackend) SetOptions(opts HTTPOptions) {
	b.client.SetBaseURL(opts.Endpoint)
	if opts.Timeout > 0 {
		b.client.SetTimeout(opts.Timeout)
	}
	b.opts.Store(&opts)
}

func (b *HTTPBackend) Name() string { return "http" }

// Embed uploads img as PNG and keeps the server side embedding id.
func (b *HTTPBackend) Embed(ctx context.Context, img image.Image) (Embedding, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode upload")
	}
	opts := b.opts.Load()
	var out embedResponse
	var apiErr errorResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Image: base64.StdEncoding.EncodeToString(buf.Bytes()), Threads: opts.Threads}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/embed")
	if err != nil {
		return nil, errors.Wrap(err, "POST /embed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("POST /embed: %s: %s", resp.Status(), apiErr.Error)
	}
	if out.EmbeddingID == "" {
		return nil, errors.New("POST /embed: empty embedding id")
	}
	sb := img.Bounds()
	if out.Width != 0 && (out.Width != sb.Dx() || out.Height != sb.Dy()) {
		return nil, errors.Errorf("POST /embed: server saw %dx%d, sent %dx%d", out.Width, out.Height, sb.Dx(), sb.Dy())
	}
	if b.logger != nil {
		b.logger.Debug("http embed", "embedding_id", out.EmbeddingID, "bytes", buf.Len())
	}
	return &remoteEmbedding{id: out.EmbeddingID, bounds: image.Rect(0, 0, sb.Dx(), sb.Dy())}, nil
}

// Infer sends the prompt points and decodes the returned PNG masks.
func (b *HTTPBackend) Infer(ctx context.Context, emb Embedding, points []segment.LabeledPoint) ([]segment.CandidateMask, error) {
	e, ok := emb.(*remoteEmbedding)
	if !ok {
		return nil, errors.Errorf("http: foreign embedding %T", emb)
	}
	opts := b.opts.Load()
	req := inferRequest{
		EmbeddingID:             e.id,
		Points:                  make([]wirePoint, 0, len(points)),
		Threads:                 opts.Threads,
		MaskThreshold:           opts.MaskThreshold,
		IoUThreshold:            opts.IoUThreshold,
		StabilityScoreThreshold: opts.StabilityScoreThreshold,
		StabilityScoreOffset:    opts.StabilityScoreOffset,
	}
	for _, p := range points {
		req.Points = append(req.Points, wirePoint{X: p.Position.X, Y: p.Position.Y, Label: int(p.Label)})
	}
	var out inferResponse
	var apiErr errorResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/infer")
	if err != nil {
		return nil, errors.Wrap(err, "POST /infer")
	}
	if resp.IsError() {
		return nil, errors.Errorf("POST /infer: %s: %s", resp.Status(), apiErr.Error)
	}
	cands := make([]segment.CandidateMask, 0, len(out.Masks))
	for i, m := range out.Masks {
		raw, err := base64.StdEncoding.DecodeString(m.PNG)
		if err != nil {
			return nil, errors.Wrapf(err, "mask %d", i)
		}
		img, err := codec.DecodeReader(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "mask %d", i)
		}
		cands = append(cands, segment.CandidateMask{Mask: codec.MaskFromImage(img), Score: m.Score})
	}
	return cands, nil
}
