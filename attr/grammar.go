package attr

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"storyc/story"
)

// Token classes understood by the position and size grammars. A
// percentage token is represented by its class only, its value is passed
// to the table entry separately.
const (
	kwLeft    = "left"
	kwRight   = "right"
	kwTop     = "top"
	kwBottom  = "bottom"
	kwCenter  = "center"
	kwContain = "contain"
	kwCover   = "cover"
	kwFill    = "fill"
	kwAuto    = "auto"
	kwPercent = "%"
)

// Pattern is a space separated sequence of token classes, "%" stands for
// any percentage.
type Pattern string

func patternOf(classes []string) Pattern {
	return Pattern(strings.Join(classes, " "))
}

type positionRule func(p []float64) story.Position
type sizeRule func(p []float64) story.Size

func at(x, y float64) positionRule {
	return func([]float64) story.Position { return story.Position{X: x, Y: y} }
}

func size(s story.Size) sizeRule {
	return func([]float64) story.Size { return s }
}

var (
	horizontal = map[string]float64{kwLeft: 0, kwCenter: 0.5, kwRight: 1}
	vertical   = map[string]float64{kwTop: 0, kwCenter: 0.5, kwBottom: 1}
)

// positionGrammar maps every accepted position pattern to its resolver.
// Patterns not present here are rejected.
var positionGrammar = buildPositionGrammar()

func buildPositionGrammar() map[Pattern]positionRule {
	g := map[Pattern]positionRule{
		"": at(0, 0),

		kwLeft:    at(0, 0.5),
		kwRight:   at(1, 0.5),
		kwTop:     at(0.5, 0),
		kwBottom:  at(0.5, 1),
		kwCenter:  at(0.5, 0.5),
		kwPercent: func(p []float64) story.Position { return story.Position{X: p[0], Y: 0.5} },

		"% %": func(p []float64) story.Position { return story.Position{X: p[0], Y: p[1]} },

		"left % top %":     func(p []float64) story.Position { return story.Position{X: p[0], Y: p[1]} },
		"top % left %":     func(p []float64) story.Position { return story.Position{X: p[1], Y: p[0]} },
		"left % bottom %":  func(p []float64) story.Position { return story.Position{X: p[0], Y: 1 - p[1]} },
		"bottom % left %":  func(p []float64) story.Position { return story.Position{X: p[1], Y: 1 - p[0]} },
		"right % top %":    func(p []float64) story.Position { return story.Position{X: 1 - p[0], Y: p[1]} },
		"top % right %":    func(p []float64) story.Position { return story.Position{X: 1 - p[1], Y: p[0]} },
		"right % bottom %": func(p []float64) story.Position { return story.Position{X: 1 - p[0], Y: 1 - p[1]} },
		"bottom % right %": func(p []float64) story.Position { return story.Position{X: 1 - p[1], Y: 1 - p[0]} },
	}

	for h, x := range horizontal {
		for v, y := range vertical {
			// two keywords, either order
			g[Pattern(h+" "+v)] = at(x, y)
			g[Pattern(v+" "+h)] = at(x, y)
		}
	}

	for h, x := range horizontal {
		// "left 20%": horizontal keyword, vertical percentage
		g[Pattern(h+" %")] = func(p []float64) story.Position { return story.Position{X: x, Y: p[0]} }
	}
	for v, y := range vertical {
		// "20% top": horizontal percentage, vertical keyword
		g[Pattern("% "+v)] = func(p []float64) story.Position { return story.Position{X: p[0], Y: y} }
	}

	for v, y := range vertical {
		// offset from the left or right edge, vertical keyword
		g[Pattern("left % "+v)] = func(p []float64) story.Position { return story.Position{X: p[0], Y: y} }
		g[Pattern("right % "+v)] = func(p []float64) story.Position { return story.Position{X: 1 - p[0], Y: y} }
		g[Pattern(v+" left %")] = func(p []float64) story.Position { return story.Position{X: p[0], Y: y} }
		g[Pattern(v+" right %")] = func(p []float64) story.Position { return story.Position{X: 1 - p[0], Y: y} }
	}
	for h, x := range horizontal {
		// offset from the top or bottom edge, horizontal keyword
		g[Pattern("top % "+h)] = func(p []float64) story.Position { return story.Position{X: x, Y: p[0]} }
		g[Pattern("bottom % "+h)] = func(p []float64) story.Position { return story.Position{X: x, Y: 1 - p[0]} }
		g[Pattern(h+" top %")] = func(p []float64) story.Position { return story.Position{X: x, Y: p[0]} }
		g[Pattern(h+" bottom %")] = func(p []float64) story.Position { return story.Position{X: x, Y: 1 - p[0]} }
	}
	return g
}

// sizeGrammar maps every accepted size pattern to its resolver.
var sizeGrammar = map[Pattern]sizeRule{
	"":        size(story.Contain()),
	kwContain: size(story.Contain()),
	kwCover:   size(story.Cover()),
	kwFill:    size(story.Fixed(1, 1)),
	kwAuto:    size(story.Contain()),
	kwPercent: func(p []float64) story.Size { return story.FixedWidth(p[0]) },

	"auto auto": size(story.Contain()),
	"auto %":    func(p []float64) story.Size { return story.FixedHeight(p[0]) },
	"% auto":    func(p []float64) story.Size { return story.FixedWidth(p[0]) },
	"% %":       func(p []float64) story.Size { return story.Fixed(p[0], p[1]) },
}

// PositionPatterns returns every accepted position pattern, sorted.
func PositionPatterns() []Pattern {
	return sortedKeys(positionGrammar)
}

// SizePatterns returns every accepted size pattern, sorted.
func SizePatterns() []Pattern {
	return sortedKeys(sizeGrammar)
}

func sortedKeys[V any](m map[Pattern]V) []Pattern {
	out := make([]Pattern, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// classify splits keyword tokens into their classes and the values of
// percentage tokens. It fails when a token is not in the allowed keyword
// set and is not a percentage.
func classify(tokens []string, allowed func(string) bool) ([]string, []float64, bool) {
	classes := make([]string, 0, len(tokens))
	var values []float64
	for _, tok := range tokens {
		if allowed(tok) {
			classes = append(classes, tok)
			continue
		}
		v, ok := parsePercent(tok)
		if !ok {
			return nil, nil, false
		}
		classes = append(classes, kwPercent)
		values = append(values, v)
	}
	return classes, values, true
}

// ResolvePosition looks up a position for the given keyword tokens. It
// reports false for combinations the grammar does not accept.
func ResolvePosition(tokens []string) (story.Position, bool) {
	classes, values, ok := classify(tokens, isPositionKeyword)
	if !ok {
		return story.Position{}, false
	}
	rule, ok := positionGrammar[patternOf(classes)]
	if !ok {
		return story.Position{}, false
	}
	return rule(values), true
}

// ResolveSize looks up a size for the given keyword tokens.
func ResolveSize(tokens []string) (story.Size, bool) {
	classes, values, ok := classify(tokens, isSizeKeyword)
	if !ok {
		return story.Size{}, false
	}
	rule, ok := sizeGrammar[patternOf(classes)]
	if !ok {
		return story.Size{}, false
	}
	return rule(values), true
}

func isPositionKeyword(tok string) bool {
	switch tok {
	case kwLeft, kwRight, kwTop, kwBottom, kwCenter:
		return true
	}
	return false
}

func isSizeKeyword(tok string) bool {
	switch tok {
	case kwContain, kwCover, kwFill, kwAuto:
		return true
	}
	return false
}

// parsePercent accepts "N%" where N is a finite decimal number and
// returns N/100. Values outside [0,100] are accepted.
func parsePercent(tok string) (float64, bool) {
	if !strings.HasSuffix(tok, "%") {
		return 0, false
	}
	num := strings.TrimRight(tok, "%")
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v / 100, true
}

func isPositionToken(tok string) bool {
	if isPositionKeyword(tok) {
		return true
	}
	_, ok := parsePercent(tok)
	return ok
}

func isSizeToken(tok string) bool {
	if isSizeKeyword(tok) {
		return true
	}
	_, ok := parsePercent(tok)
	return ok
}
