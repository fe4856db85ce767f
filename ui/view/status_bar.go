package view

import (
	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows prompt counts, mask info and the busy indicator.
type StatusBar interface {
	SetPrompts(text string)
	SetMaskInfo(text string)
	SetBusy(busy bool, text string)
}

type statusBar struct {
	promptsLbl *LabelWidget
	maskLbl    *LabelWidget
	busyLbl    *LabelWidget
}

// NewStatusBar creates the labels in a grid row starting at startCol.
// If parent is nil, labels are positioned relative to the App root.
func NewStatusBar(parent *FrameWidget, row, startCol int) StatusBar {
	s := &statusBar{
		promptsLbl: Label(Width(18), Anchor("w")),
		maskLbl:    Label(Width(34), Anchor("w")),
		busyLbl:    Label(Width(20), Anchor("e")),
	}
	for i, lbl := range []*LabelWidget{s.promptsLbl, s.maskLbl, s.busyLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.promptsLbl.Configure(Txt("Points: 0"))
	s.maskLbl.Configure(Txt("Mask: none"))
	return s
}

func (s *statusBar) SetPrompts(text string) {
	if s == nil || s.promptsLbl == nil {
		return
	}
	s.promptsLbl.Configure(Txt(text))
}

func (s *statusBar) SetMaskInfo(text string) {
	if s == nil || s.maskLbl == nil {
		return
	}
	s.maskLbl.Configure(Txt(text))
}

// SetBusy shows text while busy and clears it otherwise.
func (s *statusBar) SetBusy(busy bool, text string) {
	if s == nil || s.busyLbl == nil {
		return
	}
	if !busy {
		text = ""
	}
	s.busyLbl.Configure(Txt(text))
}
