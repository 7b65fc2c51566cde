package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"storyc/common"
	"storyc/config"
	"storyc/story"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is source file name without extension.
	Name string
	// Dir is source directory relative to the input root, "." for the root.
	Dir      string
	Format   string
	Steps    int
	Speakers []string
}

func expandTemplate(s *story.Story, src string, name config.TemplateFieldName, field string, format common.OutputFmt) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:  string(name),
		Name:     strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Dir:      filepath.ToSlash(filepath.Dir(src)),
		Format:   format.String(),
		Steps:    len(s.Steps),
		Speakers: s.Speakers(),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
