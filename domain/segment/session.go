package segment

import "math"

// PromptSession owns the ordered prompt points and the selected mask for one image.
// It performs no I/O. All mutation goes through AddPoint, Clear and SetMask so the
// mask can never outlive the points it was computed from.
type PromptSession struct {
	width, height int
	points        []LabeledPoint
	mask          *Mask // nil while stale
	lastGood      *Mask
	score         float64
	revision      uint64
}

// NewPromptSession returns an empty session for a w x h image.
func NewPromptSession(w, h int) *PromptSession {
	return &PromptSession{width: w, height: h}
}

// Bounds returns the image dimensions the session validates against.
func (s *PromptSession) Bounds() (int, int) { return s.width, s.height }

// AddPoint appends a prompt point. Points outside [0,w) x [0,h) are rejected.
func (s *PromptSession) AddPoint(p ImagePoint, label Polarity) error {
	if !s.contains(p) {
		return ErrOutOfBounds
	}
	s.points = append(s.points, LabeledPoint{Position: p, Label: label})
	s.mask = nil
	s.revision++
	return nil
}

func (s *PromptSession) contains(p ImagePoint) bool {
	// NaN fails every comparison and is rejected here.
	return p.X >= 0 && p.X < float64(s.width) && p.Y >= 0 && p.Y < float64(s.height)
}

// Clear drops all points and masks. Calling it on an empty session changes nothing.
func (s *PromptSession) Clear() {
	if len(s.points) == 0 && s.mask == nil && s.lastGood == nil {
		return
	}
	s.points = nil
	s.mask = nil
	s.lastGood = nil
	s.score = 0
	s.revision++
}

// SetMask stores the highest scoring candidate. Ties keep the earliest candidate,
// i.e. the oracle's own output order. Candidates with a nil mask, a mask of the
// wrong size or a NaN score are skipped. An empty candidate list is always
// ErrNoCandidates; otherwise a session without points has nothing to attach a
// mask to and returns ErrEmptyPrompt.
func (s *PromptSession) SetMask(candidates []CandidateMask) (CandidateMask, error) {
	if len(candidates) == 0 {
		return CandidateMask{}, ErrNoCandidates
	}
	if len(s.points) == 0 {
		return CandidateMask{}, ErrEmptyPrompt
	}
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		if !c.Mask.SameSize(s.width, s.height) || !validScore(c.Score) {
			continue
		}
		if best < 0 || c.Score > bestScore {
			best, bestScore = i, c.Score
		}
	}
	if best < 0 {
		return CandidateMask{}, ErrNoCandidates
	}
	chosen := candidates[best]
	s.mask = chosen.Mask
	s.lastGood = chosen.Mask
	s.score = chosen.Score
	s.revision++
	return chosen, nil
}

// Points returns a copy of the prompt points in click order.
func (s *PromptSession) Points() []LabeledPoint {
	out := make([]LabeledPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len is the number of prompt points.
func (s *PromptSession) Len() int { return len(s.points) }

// Mask returns the mask computed from the current points, or nil when there is
// none or the points changed since it was computed.
func (s *PromptSession) Mask() *Mask { return s.mask }

// LastGood returns the most recent mask even if points changed since.
func (s *PromptSession) LastGood() *Mask { return s.lastGood }

// Score is the confidence of the last selected mask.
func (s *PromptSession) Score() float64 { return s.score }

// Stale reports whether points exist without a matching mask.
func (s *PromptSession) Stale() bool { return len(s.points) > 0 && s.mask == nil }

// Revision increases on every mutation.
func (s *PromptSession) Revision() uint64 { return s.revision }
