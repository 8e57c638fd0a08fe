package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid husk.json",
			wantCat: CategoryConfig,
		},
		{
			name:    "build error",
			code:    "E201",
			wantMsg: "Bundling failed",
			wantCat: CategoryBuild,
		},
		{
			name:    "dev error",
			code:    "E301",
			wantMsg: "Port unavailable",
			wantCat: CategoryDev,
		},
		{
			name:    "deploy error",
			code:    "E402",
			wantMsg: "Upload failed",
			wantCat: CategoryDeploy,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_ErrorString(t *testing.T) {
	err := New("E301")
	if got := err.Error(); got != "E301: Port unavailable" {
		t.Errorf("Error() = %q", got)
	}

	uncoded := Newf(CategoryCLI, "bad flag %q", "--x")
	if got := uncoded.Error(); got != `bad flag "--x"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_Wrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("E402").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var he *Error
	if !stderrors.As(err, &he) {
		t.Error("errors.As should match *Error")
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E202").
		WithDetail("index.html not found").
		WithSuggestion("Run 'husk create' to scaffold entry documents").
		WithLocation("husk.json", 4, 12)

	if err.Detail != "index.html not found" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion == "" {
		t.Error("Suggestion not set")
	}
	if got := err.Location.String(); got != "husk.json:4:12" {
		t.Errorf("Location = %q", got)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  *Location
		want string
	}{
		{nil, ""},
		{&Location{File: "a.html", Line: 3}, "a.html:3"},
		{&Location{File: "a.html", Line: 3, Column: 7}, "a.html:3:7"},
	}

	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E301").
		WithDetail("port 1420 is in use").
		WithSuggestion("Stop the process holding the port")

	out := err.Format()
	for _, want := range []string{"E301", "Port unavailable", "port 1420 is in use", "hint:", "docs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E102")
	if got := FromError(orig, "E101"); got != orig {
		t.Error("FromError should pass through *Error unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E104")
	if wrapped.Code != "E104" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestRegistry(t *testing.T) {
	if _, ok := GetTemplate("E101"); !ok {
		t.Error("E101 should be registered")
	}
	if _, ok := GetTemplate("E000"); ok {
		t.Error("E000 should not be registered")
	}

	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Error("no codes registered")
	}

	Register("E998", ErrorTemplate{Category: CategoryCLI, Message: "Test error"})
	if err := New("E998"); err.Message != "Test error" {
		t.Errorf("registered template not used: %q", err.Message)
	}
}
