package export

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFormatLines(t *testing.T) {
	text := `## Introduction

1.1 Background
Plain paragraph text.
**Core Analysis**
   
References
*References*: see below
2. Not a subheading`

	got := FormatLines(text)
	want := []Line{
		{StyleBold, "Introduction"},
		{StyleBold, "1.1 Background"},
		{StyleNormal, "Plain paragraph text."},
		{StyleBold, "Core Analysis"},
		{StyleBold, "References"},
		{StyleNormal, "*References*: see below"},
		{StyleNormal, "2. Not a subheading"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected lines:\n%+v", got)
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Climate policy":     "Climate_policy.html",
		" AI/ML in schools ": "AI-ML_in_schools.html",
		"":                   "document.html",
	}
	for title, want := range cases {
		if got := Filename(title, "html"); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ToFile(dir, "Climate policy", "## Introduction\n\nWarming is real.\n")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if path != filepath.Join(dir, "Climate_policy.html") {
		t.Fatalf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<title>Climate policy</title>", "<strong>Introduction</strong>", "Warming is real."} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}

	if _, err := ToFile(dir, "Empty", "  \n"); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
