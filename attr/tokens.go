// Package attr reads presentation directives embedded in image alt and
// title attributes and in link text: locations, transitions, animations,
// figure names and the removal flag.
package attr

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyc/easing"
	"storyc/story"
)

const separator = "/"

// Tokens is a pre-split attribute string with a read cursor. Operations
// consume tokens from the cursor and never move it backwards.
type Tokens struct {
	buf []string
	pos int
	log *zap.Logger
}

// Tokenize splits s on whitespace. A token containing "/" is further split
// at its first "/" so that "20%/cover" reads as "20%", "/", "cover". Empty
// pieces are dropped.
func Tokenize(s string, log *zap.Logger) *Tokens {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tokens{log: log}
	for _, field := range strings.Fields(s) {
		before, after, found := strings.Cut(field, separator)
		if !found {
			t.buf = append(t.buf, field)
			continue
		}
		if before != "" {
			t.buf = append(t.buf, before)
		}
		t.buf = append(t.buf, separator)
		if after != "" {
			t.buf = append(t.buf, after)
		}
	}
	return t
}

// Peek returns the token under the cursor without consuming it.
func (t *Tokens) Peek() (string, bool) {
	if t.pos >= len(t.buf) {
		return "", false
	}
	return t.buf[t.pos], true
}

// Next consumes and returns the token under the cursor.
func (t *Tokens) Next() (string, bool) {
	tok, ok := t.Peek()
	if ok {
		t.pos++
	}
	return tok, ok
}

// Has reports whether word is among the unconsumed tokens.
func (t *Tokens) Has(word string) bool {
	for _, tok := range t.buf[t.pos:] {
		if tok == word {
			return true
		}
	}
	return false
}

// Rest returns unconsumed tokens.
func (t *Tokens) Rest() []string {
	return append([]string(nil), t.buf[t.pos:]...)
}

// All returns every token regardless of the cursor.
func (t *Tokens) All() []string {
	return append([]string(nil), t.buf...)
}

// Done reports whether all tokens were consumed.
func (t *Tokens) Done() bool {
	return t.pos >= len(t.buf)
}

// run consumes tokens while accept holds.
func (t *Tokens) run(accept func(string) bool) []string {
	var out []string
	for {
		tok, ok := t.Peek()
		if !ok || !accept(tok) {
			return out
		}
		out = append(out, tok)
		t.pos++
	}
}

// ParseLocation reads a run of position keywords, then optionally "/"
// followed by a run of size keywords. Unknown keyword combinations fall
// back to the top left corner and Contain. It never fails.
func (t *Tokens) ParseLocation() story.Location {
	var loc story.Location

	words := t.run(isPositionToken)
	if pos, ok := ResolvePosition(words); ok {
		loc.Position = pos
	} else {
		t.log.Warn("Unable to resolve position, using default", zap.Strings("words", words))
	}

	if tok, ok := t.Peek(); !ok || tok != separator {
		return loc
	}
	t.pos++

	words = t.run(isSizeToken)
	if len(words) == 0 {
		t.log.Warn("Size separator without size words, possible missing size words")
	}
	if sz, ok := ResolveSize(words); ok {
		loc.Size = sz
	} else {
		t.log.Warn("Unable to resolve size, using default", zap.Strings("words", words))
	}
	return loc
}

// ParseTransition consumes all remaining tokens looking for a transition
// type, a duration and an easing name in any order. Later tokens override
// earlier ones and unknown tokens are ignored. Returns nil when no
// transition type was found.
func (t *Tokens) ParseTransition() *story.Transition {
	var (
		found bool
		tr    = story.Transition{Time: story.DefaultTransitionTime, Easing: easing.Linear()}
	)
	for tok, ok := t.Next(); ok; tok, ok = t.Next() {
		if typ, ok := story.ParseTransitionType(tok); ok {
			tr.Type, found = typ, true
			continue
		}
		if d, ok := ParseDuration(tok); ok {
			tr.Time = d
			continue
		}
		if e, ok := easing.Parse(tok); ok {
			tr.Easing = e
			continue
		}
		t.log.Debug("Unexpected word in transition, ignoring", zap.String("word", tok))
	}
	if !found {
		return nil
	}
	return &tr
}

// ParseAnimation works like ParseTransition for animations. The "to"
// keyword reads a target location from the tokens following it.
func (t *Tokens) ParseAnimation() *story.Animation {
	var (
		found bool
		an    = story.Animation{Time: story.DefaultAnimationTime, Easing: easing.Linear()}
	)
	for tok, ok := t.Next(); ok; tok, ok = t.Next() {
		if typ, ok := story.ParseAnimationType(tok); ok {
			an.Type, found = typ, true
			an.Target = story.Location{}
			if typ == story.AnimateTo {
				an.Target = t.ParseLocation()
			}
			continue
		}
		if d, ok := ParseDuration(tok); ok {
			an.Time = d
			continue
		}
		if e, ok := easing.Parse(tok); ok {
			an.Easing = e
			continue
		}
		t.log.Debug("Unexpected word in animation, ignoring", zap.String("word", tok))
	}
	if !found {
		return nil
	}
	return &an
}

// ParseName consumes one token.
func (t *Tokens) ParseName() (string, bool) {
	return t.Next()
}

// ParseRemove consumes the next token when it is "remove".
func (t *Tokens) ParseRemove() bool {
	if tok, ok := t.Peek(); ok && tok == "remove" {
		t.pos++
		return true
	}
	return false
}

// ParseDuration accepts "<N>ms" and "<N>s" where N is a non-negative
// integer.
func ParseDuration(tok string) (time.Duration, bool) {
	if num, ok := strings.CutSuffix(tok, "ms"); ok {
		return scaled(num, time.Millisecond)
	}
	if num, ok := strings.CutSuffix(tok, "s"); ok {
		return scaled(num, time.Second)
	}
	return 0, false
}

func scaled(num string, unit time.Duration) (time.Duration, bool) {
	if num == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil || n > uint64(math.MaxInt64/int64(unit)) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
