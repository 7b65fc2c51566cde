package convert

import (
	"strings"
	"testing"

	"storyc/common"
	"storyc/config"
	"storyc/story"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		src   string
		want  string
	}{
		{"plain", "simple-text", "intro.md", "simple-text"},
		{"name", "{{ .Name }}", "scenes/intro.md", "intro"},
		{"dir", "{{ .Dir }}", "scenes/act1/intro.md", "scenes/act1"},
		{"root dir", "{{ .Dir }}", "intro.md", "."},
		{"context", "{{ .Context }}", "intro.md", string(config.OutputNameTemplateFieldName)},
		{"format", "{{ .Format }}", "intro.md", "ion"},
		{"steps", "{{ printf \"%03d\" .Steps }}", "intro.md", "002"},
		{"speakers", "{{ len .Speakers }}-{{ first .Speakers }}", "intro.md", "2-Alice"},
		{"sprig", "{{ .Name | title }}", "intro.md", "Intro"},
		{"trimmed", "  {{ .Name }}\n", "intro.md", "intro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(sampleStory(), tt.src, config.OutputNameTemplateFieldName, tt.field, common.OutputFmtIon)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplateErrors(t *testing.T) {
	_, err := expandTemplate(&story.Story{}, "intro.md", config.OutputNameTemplateFieldName, "{{ .Name", common.OutputFmtYaml)
	if err == nil || !strings.Contains(err.Error(), "unable to parse template field") {
		t.Errorf("parse error = %v", err)
	}
	if _, err := expandTemplate(&story.Story{}, "intro.md", config.OutputNameTemplateFieldName, "{{ .Missing }}", common.OutputFmtYaml); err == nil {
		t.Error("unknown field accepted")
	}
}
