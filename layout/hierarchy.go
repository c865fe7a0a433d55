package layout

import (
	"strings"

	"github.com/tsawler/pdfoutline/calibrate"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// HierarchyConfig holds configuration for outline construction
type HierarchyConfig struct {
	// TrimColon strips a trailing colon from section titles ("Summary:" becomes
	// "Summary").
	// Default: true
	TrimColon bool

	// ContentSeparator joins the body blocks attached to one section.
	// Default: " "
	ContentSeparator string

	// FallbackSection, when set, titles an H1 section that collects the body
	// text of a document with no headings. Empty disables it.
	// Default: ""
	FallbackSection string
}

// DefaultHierarchyConfig returns sensible default configuration
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		TrimColon:        true,
		ContentSeparator: " ",
	}
}

// HierarchyBuilder assigns outline levels to scored candidates and nests them
type HierarchyBuilder struct {
	config HierarchyConfig
}

// NewHierarchyBuilder creates a builder with default configuration
func NewHierarchyBuilder() *HierarchyBuilder {
	return &HierarchyBuilder{
		config: DefaultHierarchyConfig(),
	}
}

// NewHierarchyBuilderWithConfig creates a builder with custom configuration
func NewHierarchyBuilderWithConfig(config HierarchyConfig) *HierarchyBuilder {
	return &HierarchyBuilder{
		config: config,
	}
}

// Build walks the candidates in document order and returns the outline.
//
// The candidate identified by cut.TitleIndex becomes the Title, and the one
// identified by cut.DemotedIndex becomes H1. Every other candidate is
// classified by cut. A heading deeper than the open ancestry
// allows is demoted to one level below the deepest open section, so H2
// without an open H1 becomes H1 and H3 without an open H2 becomes H2. A
// heading closes every open section at its own level or deeper. Body blocks
// are appended to the content of the deepest open section; body text before
// the first heading is not attached to any section. A document without any
// heading gets a single FallbackSection holding all its body text, when one
// is configured.
//
// The final level of every candidate is written back to cands[i].Level.
func (h *HierarchyBuilder) Build(cands []model.HeadingCandidate, cut calibrate.Cutoffs) model.DocumentOutline {
	var outline model.DocumentOutline
	var stack []*model.Section
	var leading model.Section
	nextID := 1

	for i := range cands {
		c := &cands[i]
		content := text.Normalize(c.Block.Text)

		if c.Index == cut.TitleIndex && outline.Title == nil && content != "" {
			outline.Title = &model.Heading{
				Text:  h.headingText(content),
				Page:  c.Block.Page,
				Score: c.Score,
			}
			c.Level = model.LevelTitle
			continue
		}

		level := cut.Classify(c.Score)
		if c.Index == cut.DemotedIndex {
			level = model.LevelH1
		}
		if !level.IsHeading() || content == "" {
			c.Level = model.LevelBody
			if content == "" {
				continue
			}
			if len(stack) > 0 {
				h.appendContent(stack[len(stack)-1], content)
			} else if len(outline.Sections) == 0 {
				if leading.Content == "" {
					leading.Page = c.Block.Page
				}
				h.appendContent(&leading, content)
			}
			continue
		}

		// Demote orphans to one level below the deepest open section
		depth := min(level.Depth(), len(stack)+1)
		level = model.HeadingAtDepth(depth)
		c.Level = level

		// Close sections at this depth or deeper
		stack = stack[:depth-1]

		section := model.Section{
			ID:    nextID,
			Level: level,
			Text:  h.headingText(content),
			Page:  c.Block.Page,
		}
		nextID++

		if len(stack) == 0 {
			outline.Sections = append(outline.Sections, section)
			stack = append(stack, &outline.Sections[len(outline.Sections)-1])
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, section)
			stack = append(stack, &parent.Children[len(parent.Children)-1])
		}
	}

	if len(outline.Sections) == 0 && h.config.FallbackSection != "" && leading.Content != "" {
		leading.ID = 1
		leading.Level = model.LevelH1
		leading.Text = h.config.FallbackSection
		outline.Sections = append(outline.Sections, leading)
	}
	return outline
}

func (h *HierarchyBuilder) headingText(s string) string {
	if h.config.TrimColon {
		if trimmed := strings.TrimSpace(strings.TrimSuffix(s, ":")); trimmed != "" {
			return trimmed
		}
	}
	return s
}

func (h *HierarchyBuilder) appendContent(s *model.Section, content string) {
	if s.Content == "" {
		s.Content = content
		return
	}
	s.Content += h.config.ContentSeparator + content
}
