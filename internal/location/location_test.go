package location

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyExtensions(t *testing.T) {
	tests := []struct {
		ref     string
		kind    Kind
		content ContentKind
	}{
		{"report.pdf", KindFile, ContentPdf},
		{"index.html", KindFile, ContentWeb},
		{"page.htm", KindFile, ContentWeb},
		{"data.csv", KindFile, ContentTabular},
		{"data.tsv", KindFile, ContentTabular},
		{"book.xlsx", KindFile, ContentTabular},
		{"REPORT.PDF", KindFile, ContentPdf},
		{"http://example.com", KindURL, ContentWeb},
		{"https://example.com/page", KindURL, ContentWeb},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			loc, err := Classify(tt.ref, nil)
			if err != nil {
				t.Fatalf("Classify(%q): %v", tt.ref, err)
			}
			if loc.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", loc.Kind, tt.kind)
			}
			if loc.Content != tt.content {
				t.Fatalf("content = %q, want %q", loc.Content, tt.content)
			}
		})
	}
}

func TestClassifyUnresolvable(t *testing.T) {
	_, err := Classify("no-such-file.xyz", nil)
	if err == nil {
		t.Fatal("expected error for unknown extension on missing file")
	}
	var unres *UnresolvableLocationError
	if !errors.As(err, &unres) {
		t.Fatalf("expected UnresolvableLocationError, got %T: %v", err, err)
	}
	if unres.Ref != "no-such-file.xyz" {
		t.Fatalf("unexpected ref %q", unres.Ref)
	}
}

func TestClassifyExistingFileWithUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.xyz")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	loc, err := Classify(path, nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if loc.Kind != KindFile || loc.Content != ContentOther {
		t.Fatalf("got kind=%q content=%q", loc.Kind, loc.Content)
	}
}

func TestClassifyHintWins(t *testing.T) {
	hint := KindURL
	loc, err := Classify("example.com/page.pdf", &hint)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if loc.Kind != KindURL {
		t.Fatalf("hint ignored: kind = %q", loc.Kind)
	}
}

func TestClassifyFileURL(t *testing.T) {
	loc, err := Classify("file:///somedir/sample.pdf", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if loc.Kind != KindURL {
		t.Fatalf("kind = %q, want %q", loc.Kind, KindURL)
	}
	if loc.Content != ContentPdf {
		t.Fatalf("content = %q, want %q", loc.Content, ContentPdf)
	}
	path, ok := loc.Path()
	if !ok || path != "/somedir/sample.pdf" {
		t.Fatalf("path = %q, ok = %v", path, ok)
	}
}

func TestURLRoundTrip(t *testing.T) {
	loc := Location{Kind: KindURL, Content: ContentWeb, Value: "http://example.com"}
	if loc.URL() != "http://example.com" {
		t.Fatalf("URL() = %q", loc.URL())
	}

	fileLoc := Location{Kind: KindFile, Content: ContentPdf, Value: "/tmp/a.pdf"}
	if got := fileLoc.URL(); got != "file:///tmp/a.pdf" {
		t.Fatalf("URL() = %q", got)
	}
}

func TestAsURL(t *testing.T) {
	loc := Location{Kind: KindFile, Content: ContentWeb, Value: "/srv/doc/index.html"}
	coerced := loc.AsURL()
	if coerced.Kind != KindURL {
		t.Fatalf("kind = %q", coerced.Kind)
	}
	if coerced.Value != "file:///srv/doc/index.html" {
		t.Fatalf("value = %q", coerced.Value)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	loc, err := Classify(path, nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if err := loc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	missing, err := Classify(filepath.Join(dir, "missing.pdf"), nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if err := missing.Validate(); err == nil {
		t.Fatal("expected validation error for missing file")
	}
}
