package vars

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want []string
	}{
		{"ordered", "Hello {{name}}, welcome to {{place}}", []string{"name", "place"}},
		{"repeated", "{{name}} and {{ name }} and {{place}} and {{name}}", []string{"name", "place"}},
		{"none", "plain text with {single} braces", []string{}},
		{"blank token", "{{ }} then {{x}}", []string{"x"}},
		{"multi word", "Use {{target audience}} here", []string{"target audience"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Names(tc.body); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Names(%q) = %#v, want %#v", tc.body, got, tc.want)
			}
		})
	}
}

func TestExtract_ReturnsEmptyValues(t *testing.T) {
	t.Parallel()

	got := Extract("Hello {{name}}, welcome to {{place}}")
	want := []Variable{{Name: "name"}, {Name: "place"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %#v, want %#v", got, want)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	body := "Hi {{name}}, see you in {{ place }}. Bye {{name}}. {{ }}"
	got := Render(body, map[string]string{"name": "Ada"})
	want := "Hi Ada, see you in [place]. Bye Ada. {{ }}"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	got := ParseAssignments([]string{"name=Ada", " place = Paris=FR", "=skip", "flag"})
	want := map[string]string{"name": "Ada", "place": " Paris=FR", "flag": ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseAssignments = %#v, want %#v", got, want)
	}
}
