package presenter

import (
	"fmt"
	"time"

	"github.com/soocke/clickmask-go/domain/oracle"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/model"
)

// StatsSource reports oracle call counters.
type StatsSource interface{ Stats() oracle.Stats }

// SessionView displays prompt and mask statistics for the loaded image.
type SessionView interface {
	SetPrompts(text string)
	SetMaskInfo(text string)
}

// SessionPresenter formats the session's points, mask score and oracle latency.
// The view is only touched when a text changes.
type SessionPresenter struct {
	sess  *model.SessionModel
	stats StatsSource
	view  SessionView

	lastPrompts string
	lastMask    string
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, stats StatsSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, stats: stats, view: view}
}

// SetStats replaces the oracle stats source, e.g. after a backend switch.
func (p *SessionPresenter) SetStats(stats StatsSource) { p.stats = stats }

// Tick pushes the current values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	prompts := PromptsText(p.sess.Points())
	if prompts != p.lastPrompts {
		p.lastPrompts = prompts
		p.view.SetPrompts(prompts)
	}
	var st oracle.Stats
	if p.stats != nil {
		st = p.stats.Stats()
	}
	mask := MaskText(p.sess, st)
	if mask != p.lastMask {
		p.lastMask = mask
		p.view.SetMaskInfo(mask)
	}
}

// PromptsText renders "Points: n (+pos/-neg)".
func PromptsText(points []segment.LabeledPoint) string {
	pos := 0
	for _, p := range points {
		if p.Label == segment.Positive {
			pos++
		}
	}
	return fmt.Sprintf("Points: %d (+%d/-%d)", len(points), pos, len(points)-pos)
}

// MaskText renders the score of the current mask and the last inference latency.
func MaskText(sess *model.SessionModel, st oracle.Stats) string {
	prompts := sess.Prompts()
	if prompts == nil || prompts.Mask() == nil {
		return "Mask: none"
	}
	text := fmt.Sprintf("Mask: score %.2f, %d px", prompts.Score(), prompts.Mask().Area())
	if st.LastInfer > 0 {
		text += fmt.Sprintf(", %d ms", st.LastInfer.Milliseconds())
	}
	return text
}
