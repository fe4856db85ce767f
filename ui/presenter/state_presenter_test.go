package presenter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/soocke/clickmask-go/domain/interaction"
	"github.com/soocke/clickmask-go/domain/oracle"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/model"
)

type labelRecorder struct{ labels []string }

func (r *labelRecorder) SetStateLabel(s string) { r.labels = append(r.labels, s) }

func TestStatePresenter_ShowsLatestQueuedState(t *testing.T) {
	rec := &labelRecorder{}
	p := NewStatePresenter(rec)
	p.Tick(time.Now())
	p.OnState(interaction.StateNoImage, interaction.StateEmbedding)
	p.OnState(interaction.StateEmbedding, interaction.StateReady)
	p.Tick(time.Now())
	p.Tick(time.Now())
	want := []string{"State: no image", "State: ready"}
	if diff := cmp.Diff(want, rec.labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
}

type sessionViewRecorder struct{ prompts, masks []string }

func (r *sessionViewRecorder) SetPrompts(s string)  { r.prompts = append(r.prompts, s) }
func (r *sessionViewRecorder) SetMaskInfo(s string) { r.masks = append(r.masks, s) }

type staticStats oracle.Stats

func (s staticStats) Stats() oracle.Stats { return oracle.Stats(s) }

func TestSessionPresenter_Texts(t *testing.T) {
	sess := model.NewSessionModel()
	rec := &sessionViewRecorder{}
	p := NewSessionPresenter(sess, staticStats{LastInfer: 12 * time.Millisecond}, rec)
	p.Tick(time.Now())

	sess.Reset("a.png", solidImage(4, 4))
	_ = sess.Prompts().AddPoint(segment.ImagePoint{X: 1, Y: 1}, segment.Positive)
	_ = sess.Prompts().AddPoint(segment.ImagePoint{X: 2, Y: 2}, segment.Negative)
	m := segment.NewMask(4, 4)
	m.Set(0, 0, true)
	m.Set(1, 0, true)
	if _, err := sess.Prompts().SetMask([]segment.CandidateMask{{Mask: m, Score: 0.75}}); err != nil {
		t.Fatalf("set mask: %v", err)
	}
	p.Tick(time.Now())
	p.Tick(time.Now())

	if diff := cmp.Diff([]string{"Points: 0 (+0/-0)", "Points: 2 (+1/-1)"}, rec.prompts); diff != "" {
		t.Fatalf("prompts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mask: none", "Mask: score 0.75, 2 px, 12 ms"}, rec.masks); diff != "" {
		t.Fatalf("mask info (-want +got):\n%s", diff)
	}
}
