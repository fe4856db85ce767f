package oracle

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"testing"

	"github.com/soocke/clickmask-go/domain/segment"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeEmbedding struct{ r image.Rectangle }

func (f fakeEmbedding) Bounds() image.Rectangle { return f.r }

type fakeBackend struct {
	embeds, infers int
	embedErr       error
	inferErr       error
	cands          []segment.CandidateMask
	lastEmb        Embedding
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Embed(ctx context.Context, img image.Image) (Embedding, error) {
	b.embeds++
	if b.embedErr != nil {
		return nil, b.embedErr
	}
	return fakeEmbedding{r: img.Bounds()}, nil
}

func (b *fakeBackend) Infer(ctx context.Context, emb Embedding, points []segment.LabeledPoint) ([]segment.CandidateMask, error) {
	b.infers++
	b.lastEmb = emb
	return b.cands, b.inferErr
}

var onePoint = []segment.LabeledPoint{{Position: segment.ImagePoint{X: 1, Y: 1}, Label: segment.Positive}}

func TestClient_EmptyPromptNeverForwarded(t *testing.T) {
	be := &fakeBackend{}
	c := NewClient(be, discardLogger)
	if _, err := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, err := c.Infer(context.Background(), nil, nil); !errors.Is(err, segment.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if be.infers != 0 {
		t.Fatalf("empty prompt reached the backend")
	}
}

func TestClient_InferBeforeEmbed(t *testing.T) {
	be := &fakeBackend{}
	c := NewClient(be, discardLogger)
	if _, err := c.Infer(context.Background(), nil, onePoint); !errors.Is(err, segment.ErrEmbeddingNotReady) {
		t.Fatalf("expected ErrEmbeddingNotReady, got %v", err)
	}
	if be.infers != 0 {
		t.Fatalf("backend must not be called without an embedding")
	}
}

func TestClient_EmbedFailureIsModelError(t *testing.T) {
	be := &fakeBackend{embedErr: errors.New("out of memory")}
	c := NewClient(be, discardLogger)
	_, err := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	if !errors.Is(err, segment.ErrModel) {
		t.Fatalf("expected ModelError, got %v", err)
	}
	if c.Latest() != nil {
		t.Fatalf("failed embed must not leave a handle")
	}
	if s := c.Stats(); s.Failures != 1 || s.Embeds != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestClient_EmbedRejectsEmptyImage(t *testing.T) {
	be := &fakeBackend{}
	c := NewClient(be, discardLogger)
	if _, err := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 0, 0))); !errors.Is(err, segment.ErrModel) {
		t.Fatalf("expected ModelError, got %v", err)
	}
	if be.embeds != 0 {
		t.Fatalf("empty image reached the backend")
	}
}

func TestClient_InferUsesLatestHandle(t *testing.T) {
	be := &fakeBackend{cands: []segment.CandidateMask{{Mask: segment.NewMask(3, 2), Score: 0.4}}}
	c := NewClient(be, discardLogger)
	h, err := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 3, 2)))
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if h.ID == "" || h.Width != 3 || h.Height != 2 || h.Backend != "fake" {
		t.Fatalf("unexpected handle %+v", h)
	}
	cands, err := c.Infer(context.Background(), nil, onePoint)
	if err != nil || len(cands) != 1 {
		t.Fatalf("infer: %v (%d candidates)", err, len(cands))
	}
	if be.lastEmb != h.emb {
		t.Fatalf("infer did not use the latest embedding")
	}
	if s := c.Stats(); s.Embeds != 1 || s.Infers != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestClient_NewEmbedDropsPreviousHandle(t *testing.T) {
	be := &fakeBackend{}
	c := NewClient(be, discardLogger)
	first, _ := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	be.embedErr = errors.New("boom")
	_, _ = c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 5, 5)))
	if c.Latest() != nil {
		t.Fatalf("handle %s for the previous image survived a new embed", first.ID)
	}
}

func TestClient_ZeroCandidatesIsModelError(t *testing.T) {
	be := &fakeBackend{}
	c := NewClient(be, discardLogger)
	h, _ := c.Embed(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	_, err := c.Infer(context.Background(), h, onePoint)
	if !errors.Is(err, segment.ErrModel) || !errors.Is(err, segment.ErrNoCandidates) {
		t.Fatalf("expected ModelError wrapping ErrNoCandidates, got %v", err)
	}
}
