package bundle

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModuleScripts(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "single module script",
			html: `<html><body><script type="module" src="src/main.ts"></script></body></html>`,
			want: []string{"src/main.ts"},
		},
		{
			name: "multiple scripts in order",
			html: `<script type="module" src="a.js"></script><script type="module" src="b.js"></script>`,
			want: []string{"a.js", "b.js"},
		},
		{
			name: "classic script skipped",
			html: `<script src="legacy.js"></script><script type="module" src="app.js"></script>`,
			want: []string{"app.js"},
		},
		{
			name: "external url skipped",
			html: `<script type="module" src="https://cdn.example.com/lib.js"></script>`,
			want: nil,
		},
		{
			name: "protocol relative skipped",
			html: `<script type="module" src="//cdn.example.com/lib.js"></script>`,
			want: nil,
		},
		{
			name: "single quotes",
			html: `<script type='module' such src='src/main.js'></script>`,
			want: []string{"src/main.js"},
		},
		{
			name: "inline module skipped",
			html: `<script type="module">import "./x.js"</script>`,
			want: nil,
		},
		{
			name: "case insensitive tag",
			html: `<SCRIPT TYPE="module" SRC="src/main.js"></SCRIPT>`,
			want: []string{"src/main.js"},
		},
		{
			name: "no scripts",
			html: `<html><body><h1>hi</h1></body></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModuleScripts(tt.html)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ModuleScripts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteScripts(t *testing.T) {
	html := `<head><script type="module" src="src/main.js"></script></head>`
	out := RewriteScripts(html, map[string]string{
		"src/main.js": "/assets/main-abc123.js",
	})

	if !strings.Contains(out, `src="/assets/main-abc123.js"`) {
		t.Errorf("rewrite missing: %s", out)
	}
	if strings.Contains(out, `src="src/main.js"`) {
		t.Errorf("original src still present: %s", out)
	}
}

func TestRewriteScripts_Empty(t *testing.T) {
	html := `<script type="module" src="a.js"></script>`
	if got := RewriteScripts(html, nil); got != html {
		t.Errorf("empty mapping changed document: %s", got)
	}
}
