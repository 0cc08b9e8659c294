package compose

import (
	"strings"
	"testing"
)

func TestExtractSubject_Heading(t *testing.T) {
	md := "# Welcome to Glasspoint\n\nHi there,\n\nbody"
	if got := ExtractSubject(md); got != "Welcome to Glasspoint" {
		t.Fatalf("expected heading subject, got %q", got)
	}
}

func TestExtractSubject_HeadingNotOnFirstLine(t *testing.T) {
	md := "\nsome preamble\n# Big news from Glasspoint\nbody"
	if got := ExtractSubject(md); got != "Big news from Glasspoint" {
		t.Fatalf("expected heading subject, got %q", got)
	}
}

func TestExtractSubject_FallbackFirstLine(t *testing.T) {
	md := "\n\nAn email without any heading at all\nmore body"
	if got := ExtractSubject(md); got != "An email without any heading at all" {
		t.Fatalf("expected first line fallback, got %q", got)
	}
}

func TestExtractSubject_FallbackTruncates(t *testing.T) {
	long := strings.Repeat("palabra ", 30)
	got := ExtractSubject(long)
	if len(got) > 80 {
		t.Fatalf("expected fallback capped at 80 chars, got %d", len(got))
	}
}

func TestExtractSubject_Empty(t *testing.T) {
	if got := ExtractSubject("   \n\n  "); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
}

func TestRenderHTML_ConvertsMarkdown(t *testing.T) {
	html, err := RenderHTML("# Titulo\n\n- punto uno\n- punto dos\n\n**Compra ya**")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"<h1", "Titulo", "<li>punto uno</li>", "<strong>Compra ya</strong>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected html to contain %q, got:\n%s", want, html)
		}
	}
}
