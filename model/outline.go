package model

import (
	"fmt"
	"strings"
)

// Heading is the document Title
type Heading struct {
	Text  string  `json:"text"`
	Page  int     `json:"page_number"`
	Score float64 `json:"-"`
}

// Section is a heading together with the body text and subsections that
// follow it in reading order.
type Section struct {
	ID       int       `json:"section_id"`
	Level    Level     `json:"level"`
	Text     string    `json:"title"`
	Page     int       `json:"page_number"`
	Content  string    `json:"content"`
	Children []Section `json:"children,omitempty"`
}

// DocumentOutline is the classified structure of one document
type DocumentOutline struct {
	// Title is nil when no block qualified as the document title
	Title *Heading

	// Sections are the top-level sections in reading order
	Sections []Section
}

// HasTitle returns true if a Title was accepted
func (o *DocumentOutline) HasTitle() bool {
	return o != nil && o.Title != nil
}

// Walk visits every section depth-first in reading order. The depth passed to
// fn is 1 for top-level sections.
func (o *DocumentOutline) Walk(fn func(s *Section, depth int)) {
	if o == nil {
		return
	}
	var visit func(sections []Section, depth int)
	visit = func(sections []Section, depth int) {
		for i := range sections {
			fn(&sections[i], depth)
			visit(sections[i].Children, depth+1)
		}
	}
	visit(o.Sections, 1)
}

// Flatten returns every section in reading order without nesting.
// The returned sections have their Children cleared.
func (o *DocumentOutline) Flatten() []Section {
	var flat []Section
	o.Walk(func(s *Section, _ int) {
		c := *s
		c.Children = nil
		flat = append(flat, c)
	})
	return flat
}

// SectionCount returns the total number of sections at all depths
func (o *DocumentOutline) SectionCount() int {
	n := 0
	o.Walk(func(*Section, int) { n++ })
	return n
}

// MaxDepth returns the deepest nesting level present (0 when empty)
func (o *DocumentOutline) MaxDepth() int {
	deepest := 0
	o.Walk(func(_ *Section, depth int) {
		if depth > deepest {
			deepest = depth
		}
	})
	return deepest
}

// Validate checks the nesting invariants: top-level sections are H1 and every
// child is exactly one level below its parent.
func (o *DocumentOutline) Validate() error {
	if o == nil {
		return nil
	}
	var check func(sections []Section, parent Level) error
	check = func(sections []Section, parent Level) error {
		for _, s := range sections {
			want := LevelH1
			if parent != LevelBody {
				want = parent + 1
			}
			if s.Level != want {
				return fmt.Errorf("section %d %q: level %s under %s", s.ID, s.Text, s.Level, parent)
			}
			if err := check(s.Children, s.Level); err != nil {
				return err
			}
		}
		return nil
	}
	return check(o.Sections, LevelBody)
}

// Markdown returns a markdown-formatted table of contents
func (o *DocumentOutline) Markdown() string {
	if o == nil {
		return ""
	}

	var sb strings.Builder
	if o.Title != nil {
		sb.WriteString("# ")
		sb.WriteString(o.Title.Text)
		sb.WriteString("\n\n")
	}
	o.Walk(func(s *Section, depth int) {
		sb.WriteString(strings.Repeat("  ", depth-1))
		sb.WriteString("- ")
		sb.WriteString(s.Text)
		sb.WriteString("\n")
	})
	return sb.String()
}
