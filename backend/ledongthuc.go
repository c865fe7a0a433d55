package backend

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// LedongthucName is the registry name of LedongthucSource
	LedongthucName = "ledongthuc"

	// PlainTextName is the registry name of PlainTextSource
	PlainTextName = "plaintext"

	// US Letter, used when a page has no usable MediaBox
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// LedongthucSource reads glyph positions and font metrics with
// github.com/ledongthuc/pdf and groups them into blocks.
type LedongthucSource struct {
	Grouping GroupConfig
}

// NewLedongthucSource creates a source with the default grouping thresholds
func NewLedongthucSource() *LedongthucSource {
	return &LedongthucSource{Grouping: DefaultGroupConfig()}
}

// Name implements Source
func (s *LedongthucSource) Name() string {
	return LedongthucName
}

// Extract implements Source
func (s *LedongthucSource) Extract(ctx context.Context, path string) (*Extraction, error) {
	f, r, err := openPDF(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.read(ctx, r)
}

// read walks every page. The library reports malformed input by panicking,
// so panics are turned into errors here.
func (s *LedongthucSource) read(ctx context.Context, r *pdf.Reader) (ext *Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ext, err = nil, fmt.Errorf("%w: %v", ErrBackendPanic, rec)
		}
	}()

	ext = &Extraction{Backend: LedongthucName}
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		width, height := pageSize(p)

		texts := p.Content().Text
		frags := make([]Fragment, 0, len(texts))
		for _, t := range texts {
			// glyph Y is the baseline measured upward from the page bottom
			frags = append(frags, Fragment{
				Text:   t.S,
				X:      t.X,
				Y:      height - t.Y - t.FontSize,
				Width:  t.W,
				Height: t.FontSize,
				Font:   t.Font,
				Size:   t.FontSize,
			})
		}

		blocks, raw := s.Grouping.Group(frags, i, width, height)
		ext.Pages = append(ext.Pages, Page{
			Number:  i,
			Width:   width,
			Height:  height,
			Blocks:  blocks,
			RawText: raw,
		})
	}
	return ext, nil
}

// PlainTextSource is the last-resort source: it reads each page's plain
// text with github.com/ledongthuc/pdf and emits one block per non-empty
// line. Blocks carry no font metadata; their positions follow line order.
type PlainTextSource struct {
	// LineHeight is the synthetic distance between consecutive lines.
	// Default: 14
	LineHeight float64
}

// NewPlainTextSource creates a plain-text source
func NewPlainTextSource() *PlainTextSource {
	return &PlainTextSource{LineHeight: 14}
}

// Name implements Source
func (s *PlainTextSource) Name() string {
	return PlainTextName
}

// Extract implements Source
func (s *PlainTextSource) Extract(ctx context.Context, path string) (*Extraction, error) {
	f, r, err := openPDF(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.read(ctx, r)
}

func (s *PlainTextSource) read(ctx context.Context, r *pdf.Reader) (ext *Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ext, err = nil, fmt.Errorf("%w: %v", ErrBackendPanic, rec)
		}
	}()

	fonts := make(map[string]*pdf.Font)
	ext = &Extraction{Backend: PlainTextName}
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		width, height := pageSize(p)
		ext.Pages = append(ext.Pages, LinesToPage(i, width, height, text, s.LineHeight))
	}
	return ext, nil
}

// LinesToPage builds a page from plain text: one block per non-empty line,
// stacked from the top margin at lineHeight intervals.
func LinesToPage(number int, width, height float64, text string, lineHeight float64) Page {
	if lineHeight <= 0 {
		lineHeight = 14
	}
	page := Page{Number: number, Width: width, Height: height, RawText: text}
	y := 72.0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			y += lineHeight
			continue
		}
		page.Blocks = append(page.Blocks, blockAt(line, 72, y, width-144, lineHeight*0.85, number, width, height))
		y += lineHeight
	}
	return page
}

func openPDF(path string) (*os.File, *pdf.Reader, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, r, nil
}

// pageSize reads the page MediaBox, falling back to US Letter
func pageSize(p pdf.Page) (float64, float64) {
	box := p.MediaBox()
	if box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}
