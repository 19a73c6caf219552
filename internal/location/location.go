// Package location classifies incoming references (paths, URLs, datasets)
// into typed locations that viewers know how to render.
package location

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies how a location's value is addressed.
type Kind string

const (
	KindFile Kind = "file"
	KindURL  Kind = "url"
)

// ContentKind categorizes what a location renders as, which governs viewer
// selection.
type ContentKind string

const (
	ContentPdf     ContentKind = "pdf"
	ContentWeb     ContentKind = "web"
	ContentTabular ContentKind = "tabular"
	ContentOther   ContentKind = "other"
)

// UnresolvableLocationError reports a reference that could not be classified:
// a path that does not exist and carries no recognizable extension.
type UnresolvableLocationError struct {
	Ref string
	Err error
}

func (e *UnresolvableLocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unresolvable location %q: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("unresolvable location %q", e.Ref)
}

func (e *UnresolvableLocationError) Unwrap() error { return e.Err }

// Location is a classified reference to something to display. It is
// immutable once classified; create a fresh one per show request.
type Location struct {
	Kind    Kind
	Content ContentKind
	// Value is the file path (KindFile) or the URL string (KindURL).
	Value string
	// filePath is set for file:// URLs that still resolve to a local path.
	filePath string
}

// Path returns the filesystem path behind the location, when it has one.
func (l Location) Path() (string, bool) {
	switch {
	case l.Kind == KindFile:
		return l.Value, true
	case l.filePath != "":
		return l.filePath, true
	}
	return "", false
}

// URL returns the location as a URL string, converting file paths to
// file:// form.
func (l Location) URL() string {
	if l.Kind == KindURL {
		return l.Value
	}
	abs, err := filepath.Abs(l.Value)
	if err != nil {
		abs = l.Value
	}
	return "file://" + abs
}

// AsURL returns a copy of the location coerced to URL kind. Used when a
// file's extension routes it to the web viewer.
func (l Location) AsURL() Location {
	if l.Kind == KindURL {
		return l
	}
	return Location{Kind: KindURL, Content: l.Content, Value: l.URL()}
}

var contentByExtension = map[string]ContentKind{
	".pdf":  ContentPdf,
	".html": ContentWeb,
	".htm":  ContentWeb,
	".csv":  ContentTabular,
	".tsv":  ContentTabular,
	".xlsx": ContentTabular,
}

// ContentForExtension maps a file extension (with leading dot) to its
// content kind.
func ContentForExtension(ext string) ContentKind {
	if kind, ok := contentByExtension[strings.ToLower(ext)]; ok {
		return kind
	}
	return ContentOther
}

// Classify resolves a reference string into a Location. An explicit hint
// wins; otherwise http(s) scheme prefixes classify as URLs, file:// URLs
// resolve to the path they wrap, and everything else is treated as a file
// path classified by extension. A path that does not exist and has no
// recognized extension fails with UnresolvableLocationError. The function
// has no side effects beyond a stat call.
func Classify(ref string, hint *Kind) (Location, error) {
	if hint != nil {
		switch *hint {
		case KindURL:
			return classifyURL(ref)
		case KindFile:
			return classifyFile(ref)
		}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return classifyURL(ref)
	}
	if strings.HasPrefix(ref, "file://") {
		return classifyURL(ref)
	}
	return classifyFile(ref)
}

func classifyURL(ref string) (Location, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return Location{}, &UnresolvableLocationError{Ref: ref, Err: err}
	}
	loc := Location{Kind: KindURL, Content: ContentWeb, Value: ref}
	if parsed.Scheme == "file" && parsed.Path != "" {
		loc.filePath = parsed.Path
		loc.Content = ContentForExtension(filepath.Ext(parsed.Path))
		if loc.Content == ContentOther {
			loc.Content = ContentWeb
		}
	}
	return loc, nil
}

func classifyFile(ref string) (Location, error) {
	content := ContentForExtension(filepath.Ext(ref))
	if content == ContentOther {
		if _, err := os.Stat(ref); err != nil {
			return Location{}, &UnresolvableLocationError{Ref: ref, Err: err}
		}
	}
	return Location{Kind: KindFile, Content: content, Value: ref}, nil
}

// Validate confirms a file-backed location points at an existing file.
func (l Location) Validate() error {
	path, ok := l.Path()
	if !ok {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return &UnresolvableLocationError{Ref: path, Err: err}
	}
	if info.IsDir() {
		return &UnresolvableLocationError{
			Ref: path,
			Err: fmt.Errorf("is a directory"),
		}
	}
	return nil
}
