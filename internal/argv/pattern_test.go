package argv

import (
	"reflect"
	"testing"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    Pattern
		wantErr bool
	}{
		{
			pattern: "fetch",
			want:    Pattern{Name: "fetch"},
		},
		{
			pattern: "build <target>",
			want:    Pattern{Name: "build", Positionals: []Positional{{Name: "target", Required: true}}},
		},
		{
			pattern: "checkout <profile> [branch]",
			want: Pattern{Name: "checkout", Positionals: []Positional{
				{Name: "profile", Required: true},
				{Name: "branch"},
			}},
		},
		{
			pattern: "add  <profile>  [paths..]",
			want: Pattern{Name: "add", Positionals: []Positional{
				{Name: "profile", Required: true},
				{Name: "paths", Variadic: true},
			}},
		},
		{pattern: "", wantErr: true},
		{pattern: "<target>", wantErr: true},
		{pattern: "build target", wantErr: true},
		{pattern: "build <>", wantErr: true},
		{pattern: "build [a] <b>", wantErr: true},
		{pattern: "build [a..] [b]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := ParsePattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePattern(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePattern(%q) = %+v, want %+v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestPatternArity(t *testing.T) {
	tests := []struct {
		pattern string
		min     int
		max     int
	}{
		{"fetch", 0, 0},
		{"build <target>", 1, 1},
		{"checkout <profile> [branch]", 1, 2},
		{"add <profile> [paths..]", 1, -1},
		{"run <cmd..>", 1, -1},
	}

	for _, tt := range tests {
		p, err := ParsePattern(tt.pattern)
		if err != nil {
			t.Fatalf("ParsePattern(%q): %v", tt.pattern, err)
		}
		if got := p.MinArgs(); got != tt.min {
			t.Errorf("%q MinArgs() = %d, want %d", tt.pattern, got, tt.min)
		}
		if got := p.MaxArgs(); got != tt.max {
			t.Errorf("%q MaxArgs() = %d, want %d", tt.pattern, got, tt.max)
		}
	}
}

func TestPatternValidate(t *testing.T) {
	p, err := ParsePattern("checkout <profile> [branch]")
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Validate(nil, []string{"web"}); err != nil {
		t.Errorf("Validate(1 arg) = %v", err)
	}
	if err := p.Validate(nil, []string{"web", "main"}); err != nil {
		t.Errorf("Validate(2 args) = %v", err)
	}

	err = p.Validate(nil, nil)
	if err == nil || err.Error() != "checkout requires at least 1 arg(s), only received 0" {
		t.Errorf("Validate(0 args) = %v", err)
	}

	err = p.Validate(nil, []string{"a", "b", "c"})
	if err == nil || err.Error() != "checkout accepts at most 2 arg(s), received 3" {
		t.Errorf("Validate(3 args) = %v", err)
	}
}

func TestPatternBind(t *testing.T) {
	p, err := ParsePattern("add <profile> [paths..]")
	if err != nil {
		t.Fatal(err)
	}

	got := p.Bind([]string{"web", "src", "docs"})
	want := map[string]string{"profile": "web", "paths": "src docs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bind() = %v, want %v", got, want)
	}

	got = p.Bind([]string{"web"})
	want = map[string]string{"profile": "web"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bind() = %v, want %v", got, want)
	}
}
