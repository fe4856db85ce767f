package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It applies finished oracle work, refreshes the status presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Interaction *InteractionController
	State       *StatePresenter
	Session     *SessionPresenter
	Schedule    func()
}

func NewLoop(interaction *InteractionController, state *StatePresenter, sess *SessionPresenter, schedule func()) *Loop {
	return &Loop{Interaction: interaction, State: state, Session: sess, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Results first so the labels below reflect them in the same tick.
	if l.Interaction != nil {
		l.Interaction.Tick()
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
