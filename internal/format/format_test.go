package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type rendered struct{}

func (rendered) RenderText() string { return "custom text\n" }

func TestWrite_Formats(t *testing.T) {
	t.Parallel()

	v := map[string]any{"data": sample{ID: "pr-1", Title: "Cold email", Tags: []string{"Sales"}}}
	cases := []struct {
		format string
		pretty bool
		want   []string
	}{
		{"json", false, []string{`{"data":{"id":"pr-1","title":"Cold email","tags":["Sales"]}}`}},
		{"json", true, []string{"{\n  \"data\": {"}},
		{"yaml", false, []string{"data:", "  id: pr-1", "  title: Cold email"}},
		{"text", false, []string{"id: pr-1", "tags:"}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := Write(&buf, v, tc.format, tc.pretty); err != nil {
			t.Fatalf("Write(%s): %v", tc.format, err)
		}
		for _, want := range tc.want {
			if !strings.Contains(buf.String(), want) {
				t.Fatalf("Write(%s) = %q, want substring %q", tc.format, buf.String(), want)
			}
		}
	}

	if err := Write(&bytes.Buffer{}, v, "edn", false); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestWriteText_Renderer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteText(&buf, map[string]any{"data": rendered{}}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "custom text\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestTableAndTree(t *testing.T) {
	t.Parallel()

	out := Table([]string{"ID", "TITLE"}, [][]string{{"pr-1", "Cold email"}, {"pr-2", "Intro"}})
	for _, want := range []string{"ID", "TITLE", "pr-1", "Cold email", "Intro"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}

	tr := Tree("Projects", []TreeItem{
		{Label: "General"},
		{Label: "Clients", Children: []TreeItem{{Label: "Acme"}}},
	})
	lines := strings.Split(tr, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), tr)
	}
	if !strings.Contains(lines[3], "Acme") || strings.Index(lines[3], "Acme") <= strings.Index(lines[2], "Clients") {
		t.Fatalf("expected Acme nested under Clients:\n%s", tr)
	}
}

func TestTruncateAndOneLine(t *testing.T) {
	t.Parallel()

	if got := Truncate("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("Truncate zero = %q", got)
	}
	if got := OneLine("line one\n  line\ttwo "); got != "line one line two" {
		t.Fatalf("OneLine = %q", got)
	}
}
