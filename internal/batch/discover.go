package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tsawler/pdfoutline/format"
)

// DefaultPattern matches PDF files at any depth below the input root
const DefaultPattern = "**/*.{pdf,PDF}"

// Skipped is a matched file that is not a PDF
type Skipped struct {
	Path string
	MIME string
}

// Inputs is the outcome of input discovery
type Inputs struct {
	// Files are the PDFs to process, sorted
	Files []string

	// Skipped are matched files whose content is not a PDF
	Skipped []Skipped
}

// Discover finds the documents below root matching includes and not matching
// excludes. Patterns are relative to root and use doublestar syntax. A root
// that is a regular file is returned as the only input. Every match is
// sniffed by content; files that are not PDFs are reported as skipped.
func Discover(root string, includes, excludes []string) (Inputs, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Inputs{}, fmt.Errorf("input %s: %w", root, err)
	}
	if !info.IsDir() {
		return sniff([]string{root})
	}

	if len(includes) == 0 {
		includes = []string{DefaultPattern}
	}

	matched := make(map[string]bool)
	for _, pattern := range includes {
		if err := validatePattern(pattern); err != nil {
			return Inputs{}, err
		}
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern), doublestar.WithFilesOnly())
		if err != nil {
			return Inputs{}, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !excluded(root, m, excludes) {
				matched[m] = true
			}
		}
	}

	files := make([]string, 0, len(matched))
	for f := range matched {
		files = append(files, f)
	}
	slices.Sort(files)
	return sniff(files)
}

func sniff(files []string) (Inputs, error) {
	var in Inputs
	for _, f := range files {
		kind, mime, err := format.DetectFile(f)
		if err != nil {
			return Inputs{}, err
		}
		if kind != format.PDF {
			in.Skipped = append(in.Skipped, Skipped{Path: f, MIME: mime})
			continue
		}
		in.Files = append(in.Files, f)
	}
	return in, nil
}

// validatePattern rejects absolute patterns and parent directory references
func validatePattern(pattern string) error {
	clean := filepath.Clean(pattern)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("invalid pattern %q: absolute paths not allowed", pattern)
	}
	if slices.Contains(strings.Split(filepath.ToSlash(clean), "/"), "..") {
		return fmt.Errorf("invalid pattern %q: parent directory references not allowed", pattern)
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return nil
}

// excluded matches each pattern against the path relative to root and
// against the base name
func excluded(root, file string, patterns []string) bool {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(file)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}
