package story

// References lists distinct URLs a story points to, in order of first
// appearance.
type References struct {
	Images  []string
	Audio   []string
	Scripts []string
}

// Speakers returns distinct speaker names in order of first appearance.
func (s *Story) Speakers() []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	for _, a := range s.Actions() {
		t, ok := a.(Text)
		if !ok || t.Name == "" {
			continue
		}
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}

// References collects image, audio and navigation targets.
func (s *Story) References() References {
	var (
		refs References
		seen = make(map[string]struct{})
	)
	add := func(list *[]string, class, url string) {
		if url == "" {
			return
		}
		key := class + "\x00" + url
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		*list = append(*list, url)
	}
	for _, a := range s.Actions() {
		switch a := a.(type) {
		case Bg:
			add(&refs.Images, "image", a.URL)
		case Fig:
			add(&refs.Images, "image", a.URL)
		case Bgm:
			add(&refs.Audio, "audio", a.URL)
		case Sfx:
			add(&refs.Audio, "audio", a.URL)
		case Navigate:
			add(&refs.Scripts, "script", a.URL)
		}
	}
	return refs
}
