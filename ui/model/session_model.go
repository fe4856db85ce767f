package model

import (
	"image"

	"github.com/google/uuid"

	"github.com/soocke/clickmask-go/domain/oracle"
	"github.com/soocke/clickmask-go/domain/segment"
)

// BusyState tells which oracle call, if any, the session is waiting for.
type BusyState int

const (
	Idle BusyState = iota
	Embedding
	Inferring
)

func (b BusyState) String() string {
	switch b {
	case Idle:
		return "idle"
	case Embedding:
		return "embedding"
	case Inferring:
		return "inferring"
	default:
		return "unknown"
	}
}

// SessionModel is the state of the one loaded image: pixels, prompt session,
// embedding handle and busy flag. It is replaced wholesale by Reset on every load.
// The generation counter only ever grows; background results carry the generation
// they were started for so stale ones can be recognized.
// The zero value holds no image and is ready to use.
type SessionModel struct {
	id         string
	generation uint64
	name       string
	image      image.Image
	prompts    *segment.PromptSession
	busy       BusyState
	handle     *oracle.EmbeddingHandle
	scale      float64
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// Reset starts a new session for img and returns its generation.
func (m *SessionModel) Reset(name string, img image.Image) uint64 {
	m.generation++
	m.id = uuid.NewString()
	m.name = name
	m.image = img
	m.busy = Idle
	m.handle = nil
	m.scale = 0
	m.prompts = nil
	if img != nil {
		b := img.Bounds()
		m.prompts = segment.NewPromptSession(b.Dx(), b.Dy())
	}
	return m.generation
}

// Generation identifies the current session.
func (m *SessionModel) Generation() uint64 { return m.generation }

// Current reports whether gen still names the live session.
func (m *SessionModel) Current(gen uint64) bool { return gen == m.generation }

func (m *SessionModel) ID() string          { return m.id }
func (m *SessionModel) Name() string        { return m.name }
func (m *SessionModel) Image() image.Image  { return m.image }
func (m *SessionModel) Loaded() bool        { return m.image != nil }
func (m *SessionModel) Busy() BusyState     { return m.busy }
func (m *SessionModel) SetBusy(b BusyState) { m.busy = b }

// Prompts returns the prompt session, nil before the first load.
func (m *SessionModel) Prompts() *segment.PromptSession { return m.prompts }

// Embedding returns the handle of the successful embedding, if any.
func (m *SessionModel) Embedding() *oracle.EmbeddingHandle { return m.handle }

func (m *SessionModel) SetEmbedding(h *oracle.EmbeddingHandle) { m.handle = h }

// ImageSize is the loaded image size in pixels; zero without an image.
func (m *SessionModel) ImageSize() segment.Size {
	if m.image == nil {
		return segment.Size{}
	}
	b := m.image.Bounds()
	return segment.SizeOf(b.Dx(), b.Dy())
}

// Scale is the last fit-to-canvas factor used for display.
func (m *SessionModel) Scale() float64 { return m.scale }

func (m *SessionModel) SetScale(s float64) { m.scale = s }

// Points returns the prompt points, empty without an image.
func (m *SessionModel) Points() []segment.LabeledPoint {
	if m.prompts == nil {
		return nil
	}
	return m.prompts.Points()
}

// Mask returns the mask for the current points, nil when absent or stale.
func (m *SessionModel) Mask() *segment.Mask {
	if m.prompts == nil {
		return nil
	}
	return m.prompts.Mask()
}

// DisplayMask is the mask shown on screen: the last good one, which stays
// visible while a recomputation is pending or after it failed.
func (m *SessionModel) DisplayMask() *segment.Mask {
	if m.prompts == nil {
		return nil
	}
	return m.prompts.LastGood()
}
