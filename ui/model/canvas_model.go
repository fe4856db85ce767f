package model

import "github.com/soocke/clickmask-go/domain/segment"

// CanvasModel tracks the laid out size of the drawing surface. The zero value
// is not laid out yet.
type CanvasModel struct {
	width, height int
}

// NewCanvasModel returns a CanvasModel that is not laid out yet.
func NewCanvasModel() *CanvasModel { return &CanvasModel{} }

// SetSize stores the surface size and reports whether it changed.
func (m *CanvasModel) SetSize(w, h int) bool {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if w == m.width && h == m.height {
		return false
	}
	m.width, m.height = w, h
	return true
}

func (m *CanvasModel) Size() segment.Size { return segment.SizeOf(m.width, m.height) }

// Ready reports whether the surface has an area.
func (m *CanvasModel) Ready() bool { return m.width > 0 && m.height > 0 }
