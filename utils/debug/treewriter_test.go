package debug

import "testing"

func TestTreeWriter(t *testing.T) {
	tests := []struct {
		name  string
		write func(tw *TreeWriter)
		want  string
	}{
		{"empty", func(tw *TreeWriter) {}, ""},
		{
			"lines",
			func(tw *TreeWriter) {
				tw.Line(0, "Story: %d steps", 2)
				tw.Line(1, "Step[%d]", 0)
				tw.Line(2, "Wait")
			},
			"Story: 2 steps\n  Step[0]\n    Wait\n",
		},
		{
			"quoted",
			func(tw *TreeWriter) {
				tw.Quoted(1, "Text", "say \"hi\"\n")
				tw.Quoted(0, "Empty", "")
			},
			"  Text: \"say \\\"hi\\\"\\n\"\nEmpty:\n",
		},
		{
			"sections",
			func(tw *TreeWriter) {
				tw.Section("First")
				tw.Line(1, "a")
				tw.Section("Second %s", "b")
			},
			"First\n  a\n\nSecond b\n",
		},
		{
			"custom indent",
			func(tw *TreeWriter) {
				tw.WithIndent("\t").Line(2, "x")
			},
			"\t\tx\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tt.write(tw)
			if got := tw.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
