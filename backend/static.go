package backend

import (
	"context"
	"sort"

	"github.com/tsawler/pdfoutline/model"
)

// StaticName is the default name of a Static source
const StaticName = "static"

// Static is an in-memory Source. It returns a copy of its extraction, or
// Err when set, for any path.
type Static struct {
	Label string
	Pages []Page
	Err   error
}

// NewStatic creates a static source over pages
func NewStatic(label string, pages ...Page) *Static {
	return &Static{Label: label, Pages: pages}
}

// Failing creates a static source that always fails with err
func Failing(label string, err error) *Static {
	return &Static{Label: label, Err: err}
}

// Name implements Source
func (s *Static) Name() string {
	if s.Label == "" {
		return StaticName
	}
	return s.Label
}

// Extract implements Source
func (s *Static) Extract(ctx context.Context, _ string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	pages := make([]Page, len(s.Pages))
	copy(pages, s.Pages)
	return &Extraction{Backend: s.Name(), Pages: pages}, nil
}

// PagesFromBlocks groups blocks by page number. Page dimensions come from
// the first block of each page; raw holds optional raw text per page.
func PagesFromBlocks(blocks []model.TextBlock, raw map[int]string) []Page {
	byPage := make(map[int]*Page)
	for _, b := range blocks {
		p, ok := byPage[b.Page]
		if !ok {
			p = &Page{Number: b.Page, Width: b.PageWidth, Height: b.PageHeight, RawText: raw[b.Page]}
			byPage[b.Page] = p
		}
		p.Blocks = append(p.Blocks, b)
	}
	for n, text := range raw {
		if _, ok := byPage[n]; !ok {
			byPage[n] = &Page{Number: n, Width: defaultPageWidth, Height: defaultPageHeight, RawText: text}
		}
	}

	pages := make([]Page, 0, len(byPage))
	for _, p := range byPage {
		pages = append(pages, *p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages
}

// blockAt builds a block without font metadata at a fixed position
func blockAt(text string, x, y, width, height float64, page int, pageWidth, pageHeight float64) model.TextBlock {
	return model.TextBlock{
		Text:       text,
		BBox:       model.NewBBox(x, y, width, height),
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		Page:       page,
	}
}
