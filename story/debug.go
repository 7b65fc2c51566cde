package story

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"storyc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the compiled story followed by the
// per-speaker line index. It exists for manual inspection and debug reports.
func (s *Story) String() string {
	if s == nil {
		return "<nil Story>"
	}

	tw := treeWriter{debug.NewTreeWriter()}
	tw.Section("Story: %d steps", len(s.Steps))
	for i, step := range s.Steps {
		tw.Line(1, "Step[%d]: %d actions", i, len(step.Actions))
		for _, a := range step.Actions {
			tw.action(2, a)
		}
	}

	lines := make(map[string]int)
	for _, a := range s.Actions() {
		if t, ok := a.(Text); ok && t.Name != "" {
			lines[t.Name]++
		}
	}
	if len(lines) > 0 {
		tw.Section("Speakers index: %d", len(lines))
		keys := slices.Collect(maps.Keys(lines))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.Line(1, "Speaker[%q] lines[%d]", k, lines[k])
		}
	}
	return tw.String()
}

func (tw treeWriter) action(depth int, a Action) {
	switch a := a.(type) {
	case Wait:
		tw.Line(depth, "Wait time=%s", a.Time)
	case Text:
		if a.Name == "" {
			tw.Line(depth, "Text (narration)")
		} else {
			tw.Line(depth, "Text name=%q", a.Name)
		}
		tw.Quoted(depth+1, "Text", a.Text)
	case Bg:
		tw.Line(depth, "Bg url=%q", a.URL)
		tw.effects(depth+1, a.Location, a.Transition, a.Animation)
	case Fig:
		tw.Line(depth, "Fig name=%q url=%q removal=%t", a.Name, a.URL, a.Removal)
		tw.effects(depth+1, a.Location, a.Transition, a.Animation)
	case Bgm:
		tw.Line(depth, "Bgm url=%q", a.URL)
	case Sfx:
		tw.Line(depth, "Sfx url=%q", a.URL)
	case Navigate:
		tw.Line(depth, "Navigate url=%q return=%t", a.URL, a.Return)
	default:
		tw.Line(depth, "Unknown %T", a)
	}
}

func (tw treeWriter) effects(depth int, loc Location, tr *Transition, an *Animation) {
	tw.Line(depth, "Location %s", loc)
	if tr != nil {
		tw.Line(depth, "Transition %s", tr)
	}
	if an != nil {
		tw.Line(depth, "Animation %s", an)
	}
}
