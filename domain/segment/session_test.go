package segment

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func filled(w, h int) *Mask {
	m := NewMask(w, h)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

func TestPromptSession_AddPointBounds(t *testing.T) {
	s := NewPromptSession(10, 5)
	bad := []ImagePoint{{-0.001, 0}, {10, 0}, {0, 5}, {0, -1}, {11, 6}, {math.NaN(), 1}, {1, math.Inf(1)}}
	for _, p := range bad {
		if err := s.AddPoint(p, Positive); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("point %+v: expected ErrOutOfBounds, got %v", p, err)
		}
	}
	if s.Len() != 0 || s.Revision() != 0 {
		t.Fatalf("rejected points must not mutate session: len=%d rev=%d", s.Len(), s.Revision())
	}
	good := []ImagePoint{{0, 0}, {9.999, 4.999}, {5, 2}}
	for _, p := range good {
		if err := s.AddPoint(p, Negative); err != nil {
			t.Fatalf("point %+v: %v", p, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", s.Len())
	}
}

func TestPromptSession_PointsKeepClickOrderAndDuplicates(t *testing.T) {
	s := NewPromptSession(100, 100)
	_ = s.AddPoint(ImagePoint{1, 1}, Positive)
	_ = s.AddPoint(ImagePoint{2, 2}, Negative)
	_ = s.AddPoint(ImagePoint{1, 1}, Positive)
	want := []LabeledPoint{
		{Position: ImagePoint{1, 1}, Label: Positive},
		{Position: ImagePoint{2, 2}, Label: Negative},
		{Position: ImagePoint{1, 1}, Label: Positive},
	}
	got := s.Points()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
	got[0].Label = Negative
	if s.Points()[0].Label != Positive {
		t.Fatalf("Points must return a copy")
	}
}

func TestPromptSession_SetMaskArgmax(t *testing.T) {
	s := NewPromptSession(2, 2)
	_ = s.AddPoint(ImagePoint{0, 0}, Positive)
	cands := []CandidateMask{
		{Mask: NewMask(2, 2), Score: 0.2},
		{Mask: filled(2, 2), Score: 0.9},
		{Mask: NewMask(2, 2), Score: 0.5},
	}
	chosen, err := s.SetMask(cands)
	if err != nil {
		t.Fatalf("set mask: %v", err)
	}
	if chosen.Score != 0.9 || s.Mask() != cands[1].Mask {
		t.Fatalf("expected second candidate, got score %v", chosen.Score)
	}
	if s.Score() != 0.9 || s.Stale() {
		t.Fatalf("unexpected score=%v stale=%v", s.Score(), s.Stale())
	}
}

func TestPromptSession_SetMaskTieKeepsFirst(t *testing.T) {
	s := NewPromptSession(1, 1)
	_ = s.AddPoint(ImagePoint{0, 0}, Positive)
	a, b := NewMask(1, 1), filled(1, 1)
	if _, err := s.SetMask([]CandidateMask{{Mask: a, Score: 0.7}, {Mask: b, Score: 0.7}}); err != nil {
		t.Fatalf("set mask: %v", err)
	}
	if s.Mask() != a {
		t.Fatalf("tie must keep the first candidate")
	}
}

func TestPromptSession_SetMaskRejects(t *testing.T) {
	s := NewPromptSession(3, 3)
	if _, err := s.SetMask([]CandidateMask{{Mask: NewMask(3, 3), Score: 1}}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt without points, got %v", err)
	}
	for _, empty := range [][]CandidateMask{nil, {}} {
		if _, err := s.SetMask(empty); !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("empty candidates without points: got %v, want ErrNoCandidates", err)
		}
	}
	_ = s.AddPoint(ImagePoint{1, 1}, Positive)
	if _, err := s.SetMask(nil); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	junk := []CandidateMask{{Mask: nil, Score: 1}, {Mask: NewMask(2, 3), Score: 1}, {Mask: NewMask(3, 3), Score: math.NaN()}}
	if _, err := s.SetMask(junk); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates for unusable candidates, got %v", err)
	}
	if s.Mask() != nil {
		t.Fatalf("failed SetMask must not store a mask")
	}
}

func TestPromptSession_AddPointInvalidatesMask(t *testing.T) {
	s := NewPromptSession(2, 2)
	_ = s.AddPoint(ImagePoint{0, 0}, Positive)
	m := filled(2, 2)
	_, _ = s.SetMask([]CandidateMask{{Mask: m, Score: 1}})
	_ = s.AddPoint(ImagePoint{1, 1}, Negative)
	if s.Mask() != nil || !s.Stale() {
		t.Fatalf("mask must be stale after a new point")
	}
	if s.LastGood() != m {
		t.Fatalf("last good mask must survive invalidation")
	}
}

func TestPromptSession_ClearIdempotent(t *testing.T) {
	s := NewPromptSession(4, 4)
	_ = s.AddPoint(ImagePoint{1, 1}, Positive)
	_, _ = s.SetMask([]CandidateMask{{Mask: filled(4, 4), Score: 0.3}})
	s.Clear()
	if s.Len() != 0 || s.Mask() != nil || s.LastGood() != nil {
		t.Fatalf("clear left state behind")
	}
	rev := s.Revision()
	s.Clear()
	if s.Len() != 0 || s.Mask() != nil || s.Revision() != rev {
		t.Fatalf("second clear must be a no-op (rev %d -> %d)", rev, s.Revision())
	}
}

func TestMask_IoU(t *testing.T) {
	a, b := NewMask(2, 1), NewMask(2, 1)
	if a.IoU(b) != 1 {
		t.Fatalf("two empty masks should be identical")
	}
	a.Set(0, 0, true)
	b.Set(0, 0, true)
	b.Set(1, 0, true)
	if got := a.IoU(b); got != 0.5 {
		t.Fatalf("expected IoU 0.5, got %v", got)
	}
	if a.IoU(NewMask(1, 1)) != 0 {
		t.Fatalf("mismatched sizes must yield 0")
	}
}
