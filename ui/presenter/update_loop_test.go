package presenter

import (
	"testing"
	"time"

	"github.com/soocke/clickmask-go/domain/interaction"
	"github.com/soocke/clickmask-go/ui/model"
)

func TestLoop_TickDrivesPresentersAndReschedules(t *testing.T) {
	c, _ := newTestController(t, &fakeOracle{})
	labels := &labelRecorder{}
	state := NewStatePresenter(labels)
	c.AddListener(state.OnState)
	sessView := &sessionViewRecorder{}
	scheduled := 0
	l := NewLoop(c, state, NewSessionPresenter(c.Session, nil, sessView), func() { scheduled++ })

	c.LoadFromImage("a.png", solidImage(20, 20))
	for i := 0; i < 1000 && c.State() != interaction.StateReady; i++ {
		l.Tick()
		time.Sleep(time.Millisecond)
	}
	if c.State() != interaction.StateReady || c.Session.Busy() != model.Idle {
		t.Fatalf("loop never applied the embedding, state=%s", c.State())
	}
	l.Tick()
	if scheduled == 0 || labels.labels[len(labels.labels)-1] != "State: ready" {
		t.Fatalf("unexpected loop effects scheduled=%d labels=%v", scheduled, labels.labels)
	}
	if len(sessView.prompts) == 0 {
		t.Fatalf("session presenter not ticked")
	}
	var zero *Loop
	zero.Tick()
}
