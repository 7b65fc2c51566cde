// Package story defines the compiled scene program: an ordered list of
// steps, each holding typed actions in document order.
package story

import (
	"time"
)

// Story is the result of compiling one script.
type Story struct {
	Steps []Step
}

// Step groups actions produced by one paragraph.
type Step struct {
	Actions []Action
}

// Action is one of Wait, Text, Bg, Fig, Bgm, Sfx or Navigate.
type Action interface {
	// Directive returns the keyword naming the action kind.
	Directive() string
	isAction()
}

// Wait is a pure delay.
type Wait struct {
	Time time.Duration
}

// Text is a dialogue line. Empty Name means narration.
type Text struct {
	Name string
	Text string
}

// Bg replaces the background image.
type Bg struct {
	URL        string
	Transition *Transition
	Animation  *Animation
	Location   Location
}

// Fig shows, changes or removes a named figure.
type Fig struct {
	Name       string
	URL        string
	Transition *Transition
	Animation  *Animation
	Location   Location
	Removal    bool
}

type Bgm struct {
	URL string
}

type Sfx struct {
	URL string
}

// Navigate branches to another script. Return is set for "end" links.
type Navigate struct {
	URL    string
	Return bool
}

func (Wait) Directive() string { return "wait" }
func (Text) Directive() string { return "text" }
func (Bg) Directive() string   { return "bg" }
func (Fig) Directive() string  { return "fig" }
func (Bgm) Directive() string  { return "bgm" }
func (Sfx) Directive() string  { return "sfx" }

func (n Navigate) Directive() string {
	if n.Return {
		return "end"
	}
	return "goto"
}

func (Wait) isAction()     {}
func (Text) isAction()     {}
func (Bg) isAction()       {}
func (Fig) isAction()      {}
func (Bgm) isAction()      {}
func (Sfx) isAction()      {}
func (Navigate) isAction() {}

// Append adds a step to the end of the story.
func (s *Story) Append(step Step) {
	s.Steps = append(s.Steps, step)
}

// Actions returns every action of the story in order.
func (s *Story) Actions() []Action {
	var out []Action
	for _, step := range s.Steps {
		out = append(out, step.Actions...)
	}
	return out
}
