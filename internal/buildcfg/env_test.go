package buildcfg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromOS(t *testing.T) {
	env := FromOS([]string{
		"HUSK_PLATFORM=windows",
		"PATH=/usr/bin:/bin",
		"EMPTY=",
		"WITH=equals=inside",
		"malformed",
		"=novalue",
	})

	want := Environ{
		"HUSK_PLATFORM": "windows",
		"PATH":          "/usr/bin:/bin",
		"EMPTY":         "",
		"WITH":          "equals=inside",
	}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Errorf("FromOS mismatch (-want +got):\n%s", diff)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"1", true},
		{"0", true},
		{"false", true},
		{" ", true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestExposed(t *testing.T) {
	env := Environ{
		"HUSK_API_URL":  "http://localhost:8080",
		"SHELL_VERSION": "2.1.0",
		"HOME":          "/home/user",
		"AWS_REGION":    "us-east-1",
		"HUSK_DEBUG":    "1",
	}

	got := Exposed(env, []string{"HUSK_", "SHELL_"})
	want := Environ{
		"HUSK_API_URL":  "http://localhost:8080",
		"SHELL_VERSION": "2.1.0",
		"HUSK_DEBUG":    "1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Exposed mismatch (-want +got):\n%s", diff)
	}
}

func TestExposed_NoPrefixes(t *testing.T) {
	got := Exposed(Environ{"HUSK_X": "1"}, nil)
	if len(got) != 0 {
		t.Errorf("Exposed with no prefixes = %v, want empty", got)
	}
}
