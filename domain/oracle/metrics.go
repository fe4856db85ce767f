package oracle

import (
	"sync/atomic"
	"time"
)

// Stats summarises oracle traffic for instrumentation and the status bar.
type Stats struct {
	Embeds    uint64
	Infers    uint64
	Failures  uint64
	AvgEmbed  time.Duration
	AvgInfer  time.Duration
	LastInfer time.Duration
}

type metrics struct {
	embeds     atomic.Uint64
	infers     atomic.Uint64
	failures   atomic.Uint64
	embedNanos atomic.Uint64
	inferNanos atomic.Uint64
	lastInfer  atomic.Int64
}

func (m *metrics) observeEmbed(d time.Duration, err error) {
	if err != nil {
		m.failures.Add(1)
		return
	}
	m.embeds.Add(1)
	m.embedNanos.Add(uint64(d.Nanoseconds()))
}

func (m *metrics) observeInfer(d time.Duration, err error) {
	if err != nil {
		m.failures.Add(1)
		return
	}
	m.infers.Add(1)
	m.inferNanos.Add(uint64(d.Nanoseconds()))
	m.lastInfer.Store(d.Nanoseconds())
}

func (m *metrics) snapshot() Stats {
	s := Stats{
		Embeds:    m.embeds.Load(),
		Infers:    m.infers.Load(),
		Failures:  m.failures.Load(),
		LastInfer: time.Duration(m.lastInfer.Load()),
	}
	if s.Embeds > 0 {
		s.AvgEmbed = time.Duration(m.embedNanos.Load() / s.Embeds)
	}
	if s.Infers > 0 {
		s.AvgInfer = time.Duration(m.inferNanos.Load() / s.Infers)
	}
	return s
}
