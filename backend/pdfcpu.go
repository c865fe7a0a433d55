package backend

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/pdfoutline/contentstream"
)

// PdfcpuName is the registry name of PdfcpuSource
const PdfcpuName = "pdfcpu"

// PdfcpuSource reads page content streams with github.com/pdfcpu/pdfcpu
// and interprets their text operators. Font families are the page's font
// resource names, so bold is never detected.
type PdfcpuSource struct {
	Grouping GroupConfig
}

// NewPdfcpuSource creates a source with the default grouping thresholds
func NewPdfcpuSource() *PdfcpuSource {
	return &PdfcpuSource{Grouping: DefaultGroupConfig()}
}

// Name implements Source
func (s *PdfcpuSource) Name() string {
	return PdfcpuName
}

// Extract implements Source
func (s *PdfcpuSource) Extract(ctx context.Context, path string) (ext *Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ext, err = nil, fmt.Errorf("%w: %v", ErrBackendPanic, rec)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := pdfmodel.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	// pages without dimensions fall back to US Letter below
	dims, _ := pctx.PageDims()

	ext = &Extraction{Backend: PdfcpuName}
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		width, height := defaultPageWidth, defaultPageHeight
		if pageNr-1 < len(dims) && dims[pageNr-1].Width > 0 && dims[pageNr-1].Height > 0 {
			width, height = dims[pageNr-1].Width, dims[pageNr-1].Height
		}

		page := Page{Number: pageNr, Width: width, Height: height}
		if runs := pageRuns(pctx, pageNr); len(runs) > 0 {
			frags := make([]Fragment, len(runs))
			for i, r := range runs {
				frags[i] = Fragment{
					Text:   r.Text,
					X:      r.X,
					Y:      height - r.Y - r.Size,
					Width:  r.Width,
					Height: r.Size,
					Font:   r.Font,
					Size:   r.Size,
				}
			}
			page.Blocks, page.RawText = s.Grouping.Group(frags, pageNr, width, height)
		}
		ext.Pages = append(ext.Pages, page)
	}
	return ext, nil
}

// pageRuns returns the text runs of one page. A damaged stream yields the
// runs read before the damage; a missing stream yields none.
func pageRuns(pctx *pdfmodel.Context, pageNr int) []contentstream.TextRun {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	runs, _ := contentstream.ExtractText(data)
	return runs
}
