package script

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyc/attr"
	"storyc/document"
	"storyc/story"
)

// walker carries state of one compilation.
type walker struct {
	log     *zap.Logger
	base    *url.URL
	speaker string
}

func (w *walker) document(doc *document.Node) (*story.Story, error) {
	s := &story.Story{}
	for _, n := range doc.Children {
		switch n.Kind {
		case document.KindHeading:
			name, ok := n.SingleText()
			if !ok {
				return nil, newError(InvalidHeading, "", n.Pos)
			}
			w.speaker = strings.TrimSpace(name)
		case document.KindThematicBreak:
			w.speaker = ""
		case document.KindParagraph:
			step, err := w.paragraph(n)
			if err != nil {
				return nil, err
			}
			s.Append(step)
		default:
			return nil, newError(UnknownNode, n.Name, n.Pos)
		}
	}
	return s, nil
}

func (w *walker) paragraph(p *document.Node) (story.Step, error) {
	var step story.Step
	for _, n := range p.Children {
		pos := n.Pos
		if pos == nil {
			pos = p.Pos
		}

		var (
			action story.Action
			err    error
		)
		switch n.Kind {
		case document.KindText:
			if n.Value == "" {
				continue
			}
			action = story.Text{Name: w.speaker, Text: n.Value}
		case document.KindLink:
			action, err = w.link(n, pos)
		case document.KindImage:
			action, err = w.image(n, pos)
		default:
			err = newError(UnsupportedInline, n.Name, pos)
		}
		if err != nil {
			return story.Step{}, err
		}
		step.Actions = append(step.Actions, action)
	}
	return step, nil
}

func (w *walker) link(n *document.Node, pos *document.Position) (story.Action, error) {
	text, ok := n.SingleText()
	if !ok {
		return nil, newError(InvalidLink, "", pos)
	}
	toks := attr.Tokenize(text, w.log)
	directive, _ := toks.Next()

	switch directive {
	case "goto", "end":
		target, err := w.resolve(n.URL, pos)
		if err != nil {
			return nil, err
		}
		return story.Navigate{URL: target, Return: directive == "end"}, nil
	case "wait":
		raw := strings.TrimPrefix(n.URL, "#")
		ms, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
			return nil, newError(InvalidWaitTime, raw, pos)
		}
		return story.Wait{Time: time.Duration(ms) * time.Millisecond}, nil
	default:
		return nil, newError(InvalidLink, directive, pos)
	}
}

func (w *walker) image(n *document.Node, pos *document.Position) (story.Action, error) {
	alt := attr.Tokenize(n.Alt, w.log)
	title := attr.Tokenize(n.Title, w.log)
	directive, _ := alt.Next()

	switch directive {
	case "bg":
		tr := alt.ParseTransition()
		loc := title.ParseLocation()
		an := title.ParseAnimation()
		target, err := w.resolve(n.URL, pos)
		if err != nil {
			return nil, err
		}
		return story.Bg{URL: target, Transition: tr, Animation: an, Location: loc}, nil
	case "fig":
		removal := alt.ParseRemove() || alt.Has("remove")
		tr := alt.ParseTransition()
		name, ok := title.ParseName()
		if !ok {
			return nil, newError(NoFigureName, "", pos)
		}
		loc := title.ParseLocation()
		an := title.ParseAnimation()
		target, err := w.resolve(n.URL, pos)
		if err != nil {
			return nil, err
		}
		return story.Fig{Name: name, URL: target, Transition: tr, Animation: an, Location: loc, Removal: removal}, nil
	case "bgm", "sfx":
		target, err := w.resolve(n.URL, pos)
		if err != nil {
			return nil, err
		}
		if directive == "bgm" {
			return story.Bgm{URL: target}, nil
		}
		return story.Sfx{URL: target}, nil
	default:
		return nil, newError(InvalidImage, directive, pos)
	}
}

// resolve checks that raw is a URL reference and resolves it against the
// base when there is one.
func (w *walker) resolve(raw string, pos *document.Position) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", &ParseError{Kind: InvalidURL, Detail: raw, Pos: pos, err: err}
	}
	if w.base == nil {
		return raw, nil
	}
	return w.base.ResolveReference(ref).String(), nil
}
