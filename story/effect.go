package story

import (
	"fmt"
	"time"

	"storyc/easing"
)

const (
	DefaultTransitionTime = time.Second
	DefaultAnimationTime  = 60 * time.Second
)

type TransitionType int

const (
	FadeIn TransitionType = iota
	FadeOut
	ConicIn
	ConicOut
	BlindsIn
	BlindsOut
	Shake
)

var transitionNames = []string{
	FadeIn:    "fade-in",
	FadeOut:   "fade-out",
	ConicIn:   "conic-in",
	ConicOut:  "conic-out",
	BlindsIn:  "blinds-in",
	BlindsOut: "blinds-out",
	Shake:     "shake",
}

func (t TransitionType) String() string {
	if t >= 0 && int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return fmt.Sprintf("TransitionType(%d)", int(t))
}

// ParseTransitionType maps a transition keyword to its type.
func ParseTransitionType(name string) (TransitionType, bool) {
	for i, s := range transitionNames {
		if s == name {
			return TransitionType(i), true
		}
	}
	return 0, false
}

// TransitionTypeNames returns all transition keywords in declaration order.
func TransitionTypeNames() []string {
	return append([]string(nil), transitionNames...)
}

type Transition struct {
	Type   TransitionType
	Time   time.Duration
	Easing easing.Function
}

func (t Transition) String() string {
	return fmt.Sprintf("%s %s %s", t.Type, t.Time, t.Easing)
}

type AnimationType int

const (
	AnimateTo AnimationType = iota
	AnimateShake
)

func (t AnimationType) String() string {
	switch t {
	case AnimateTo:
		return "to"
	case AnimateShake:
		return "shake"
	}
	return fmt.Sprintf("AnimationType(%d)", int(t))
}

// ParseAnimationType maps an animation keyword to its type.
func ParseAnimationType(name string) (AnimationType, bool) {
	switch name {
	case "to":
		return AnimateTo, true
	case "shake":
		return AnimateShake, true
	}
	return 0, false
}

// Animation moves or shakes an element. Target is only meaningful for
// AnimateTo.
type Animation struct {
	Type   AnimationType
	Target Location
	Time   time.Duration
	Easing easing.Function
}

func (a Animation) String() string {
	if a.Type == AnimateTo {
		return fmt.Sprintf("%s [%s] %s %s", a.Type, a.Target, a.Time, a.Easing)
	}
	return fmt.Sprintf("%s %s %s", a.Type, a.Time, a.Easing)
}
