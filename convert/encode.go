package convert

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/amazon-ion/ion-go/ion"
	yaml "gopkg.in/yaml.v3"

	"storyc/common"
	"storyc/project"
	"storyc/story"
)

// Serialized form shared by all output formats. Durations are in
// milliseconds, easing is its keyword or cubic-bezier() notation.
type (
	wireStory struct {
		Steps []wireStep `yaml:"steps" json:"steps" ion:"steps"`
	}

	wireStep struct {
		Actions []wireAction `yaml:"actions" json:"actions" ion:"actions"`
	}

	wireAction struct {
		Type       string          `yaml:"type" json:"type" ion:"type"`
		Name       string          `yaml:"name,omitempty" json:"name,omitempty" ion:"name,omitempty"`
		Text       string          `yaml:"text,omitempty" json:"text,omitempty" ion:"text,omitempty"`
		URL        string          `yaml:"url,omitempty" json:"url,omitempty" ion:"url,omitempty"`
		TimeMs     int64           `yaml:"time_ms,omitempty" json:"time_ms,omitempty" ion:"time_ms,omitempty"`
		Remove     bool            `yaml:"remove,omitempty" json:"remove,omitempty" ion:"remove,omitempty"`
		Location   *wireLocation   `yaml:"location,omitempty" json:"location,omitempty" ion:"location,omitempty"`
		Transition *wireTransition `yaml:"transition,omitempty" json:"transition,omitempty" ion:"transition,omitempty"`
		Animation  *wireAnimation  `yaml:"animation,omitempty" json:"animation,omitempty" ion:"animation,omitempty"`
	}

	wireLocation struct {
		X      float64 `yaml:"x" json:"x" ion:"x"`
		Y      float64 `yaml:"y" json:"y" ion:"y"`
		Size   string  `yaml:"size" json:"size" ion:"size"`
		Width  float64 `yaml:"width,omitempty" json:"width,omitempty" ion:"width,omitempty"`
		Height float64 `yaml:"height,omitempty" json:"height,omitempty" ion:"height,omitempty"`
	}

	wireTransition struct {
		Type   string `yaml:"type" json:"type" ion:"type"`
		TimeMs int64  `yaml:"time_ms" json:"time_ms" ion:"time_ms"`
		Easing string `yaml:"easing" json:"easing" ion:"easing"`
	}

	wireAnimation struct {
		Type   string        `yaml:"type" json:"type" ion:"type"`
		Target *wireLocation `yaml:"target,omitempty" json:"target,omitempty" ion:"target,omitempty"`
		TimeMs int64         `yaml:"time_ms" json:"time_ms" ion:"time_ms"`
		Easing string        `yaml:"easing" json:"easing" ion:"easing"`
	}

	wireScript struct {
		Ref   string    `yaml:"ref" json:"ref" ion:"ref"`
		Story wireStory `yaml:"story" json:"story" ion:"story"`
	}

	wireManifest struct {
		ID      string       `yaml:"id" json:"id" ion:"id"`
		Entry   string       `yaml:"entry" json:"entry" ion:"entry"`
		Scripts []wireScript `yaml:"scripts" json:"scripts" ion:"scripts"`
		Images  []string     `yaml:"images" json:"images" ion:"images"`
		Audio   []string     `yaml:"audio" json:"audio" ion:"audio"`
	}
)

func toWireStory(s *story.Story) wireStory {
	out := wireStory{Steps: make([]wireStep, 0, len(s.Steps))}
	for _, step := range s.Steps {
		ws := wireStep{Actions: make([]wireAction, 0, len(step.Actions))}
		for _, a := range step.Actions {
			ws.Actions = append(ws.Actions, toWireAction(a))
		}
		out.Steps = append(out.Steps, ws)
	}
	return out
}

func toWireAction(a story.Action) wireAction {
	wa := wireAction{Type: a.Directive()}
	switch a := a.(type) {
	case story.Wait:
		wa.TimeMs = a.Time.Milliseconds()
	case story.Text:
		wa.Name, wa.Text = a.Name, a.Text
	case story.Bg:
		wa.URL = a.URL
		wa.Location = toWireLocation(a.Location)
		wa.Transition = toWireTransition(a.Transition)
		wa.Animation = toWireAnimation(a.Animation)
	case story.Fig:
		wa.Name, wa.URL, wa.Remove = a.Name, a.URL, a.Removal
		wa.Location = toWireLocation(a.Location)
		wa.Transition = toWireTransition(a.Transition)
		wa.Animation = toWireAnimation(a.Animation)
	case story.Bgm:
		wa.URL = a.URL
	case story.Sfx:
		wa.URL = a.URL
	case story.Navigate:
		wa.URL = a.URL
	}
	return wa
}

func toWireLocation(l story.Location) *wireLocation {
	return &wireLocation{
		X:      l.Position.X,
		Y:      l.Position.Y,
		Size:   l.Size.Kind.String(),
		Width:  l.Size.Width,
		Height: l.Size.Height,
	}
}

func toWireTransition(t *story.Transition) *wireTransition {
	if t == nil {
		return nil
	}
	return &wireTransition{Type: t.Type.String(), TimeMs: t.Time.Milliseconds(), Easing: t.Easing.Name()}
}

func toWireAnimation(a *story.Animation) *wireAnimation {
	if a == nil {
		return nil
	}
	wa := &wireAnimation{Type: a.Type.String(), TimeMs: a.Time.Milliseconds(), Easing: a.Easing.Name()}
	if a.Type == story.AnimateTo {
		wa.Target = toWireLocation(a.Target)
	}
	return wa
}

func toWireManifest(m *project.Manifest) wireManifest {
	out := wireManifest{
		ID:      m.ID.String(),
		Entry:   m.Entry,
		Scripts: make([]wireScript, 0, len(m.Scripts)),
		Images:  m.Images,
		Audio:   m.Audio,
	}
	for _, ref := range m.Scripts {
		out.Scripts = append(out.Scripts, wireScript{Ref: ref, Story: toWireStory(m.Stories[ref])})
	}
	return out
}

// EncodeStory writes s to w in requested format.
func EncodeStory(w io.Writer, s *story.Story, format common.OutputFmt) error {
	return encode(w, toWireStory(s), format)
}

// EncodeManifest writes crawl results, including every compiled story, to
// w in requested format.
func EncodeManifest(w io.Writer, m *project.Manifest, format common.OutputFmt) error {
	return encode(w, toWireManifest(m), format)
}

func encode(w io.Writer, v any, format common.OutputFmt) error {
	switch format {
	case common.OutputFmtYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("unable to encode yaml: %w", err)
		}
		return enc.Close()
	case common.OutputFmtJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("unable to encode json: %w", err)
		}
		return nil
	case common.OutputFmtIon:
		iw := ion.NewTextWriter(w)
		if err := ion.MarshalTo(iw, v); err != nil {
			return fmt.Errorf("unable to encode ion: %w", err)
		}
		return iw.Finish()
	default:
		return fmt.Errorf("%d is %w", int(format), common.ErrInvalidOutputFmt)
	}
}
