package tables

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
)

// DelimitedName is the registry name of the DelimitedDetector
const DelimitedName = "delimited"

// separatorCell matches the cells of a markdown separator row ("---", ":--:")
var separatorCell = regexp.MustCompile(`^:?-{3,}:?$`)

// DelimitedDetector finds tables in raw text whose columns are separated by
// tabs, pipes, or aligned runs of spaces.
//
// A table is a run of consecutive lines sharing one delimiter kind. The first
// line is the header row. When any row's cell count differs from the header's,
// or a space-aligned row's columns do not start under the header's, the whole
// candidate is discarded.
type DelimitedDetector struct {
	config     Config
	spaceSplit *regexp.Regexp
}

// NewDelimitedDetector creates a detector with default configuration
func NewDelimitedDetector() *DelimitedDetector {
	d := &DelimitedDetector{}
	_ = d.Configure(DefaultConfig())
	return d
}

// Name returns the detector name
func (d *DelimitedDetector) Name() string {
	return DelimitedName
}

// Configure sets detector parameters
func (d *DelimitedDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	d.spaceSplit = regexp.MustCompile(` {` + strconv.Itoa(config.MinSpaces) + `,}`)
	return nil
}

// Detect implements Detector
func (d *DelimitedDetector) Detect(page int, raw string) []model.Table {
	tables, _ := d.Scan(page, raw)
	return tables
}

// Scan returns the valid tables found on a page together with the validation
// errors of discarded candidates.
func (d *DelimitedDetector) Scan(page int, raw string) ([]model.Table, []error) {
	var (
		tables   []model.Table
		rejected []error
		run      [][]string
		starts   [][]int
		kind     model.Delimiter
	)

	flush := func() {
		if len(run) >= d.config.MinRows {
			t := model.Table{
				Page:      page,
				Headers:   run[0],
				Rows:      run[1:],
				Delimiter: kind,
			}
			err := Validate(t)
			if err == nil && kind == model.DelimiterSpaces {
				err = d.checkAlignment(starts)
			}
			if err != nil {
				rejected = append(rejected, err)
			} else {
				tables = append(tables, t)
			}
		}
		run, starts = nil, nil
		kind = model.DelimiterNone
	}

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		lineKind, cells, offsets := d.splitLine(line)

		if lineKind == model.DelimiterPipe && isSeparatorRow(cells) {
			if kind == model.DelimiterPipe {
				continue
			}
			flush()
			kind = model.DelimiterPipe
			continue
		}

		if lineKind == model.DelimiterNone || len(cells) < d.config.MinCols {
			flush()
			continue
		}
		if lineKind != kind {
			flush()
			kind = lineKind
		}
		run = append(run, cells)
		starts = append(starts, offsets)
	}
	flush()

	return tables, rejected
}

// checkAlignment compares the column starts of every row with the header's.
// Rows have the header's cell count here.
func (d *DelimitedDetector) checkAlignment(starts [][]int) error {
	header := starts[0]
	for i, row := range starts[1:] {
		for col, at := range row {
			if diff := at - header[col]; diff > d.config.AlignTolerance || -diff > d.config.AlignTolerance {
				return fmt.Errorf("%w: row %d column %d starts at %d, header column at %d",
					ErrTableValidation, i+1, col+1, at, header[col])
			}
		}
	}
	return nil
}

// splitLine classifies a line by its delimiter and splits it into cells.
// Tabs take precedence over pipes, and pipes over runs of spaces. For runs of
// spaces it also returns the rune offset at which each cell starts, leading
// indentation included.
func (d *DelimitedDetector) splitLine(line string) (model.Delimiter, []string, []int) {
	line = strings.TrimRight(line, " \t\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return model.DelimiterNone, nil, nil
	}

	switch {
	case strings.Contains(trimmed, "\t"):
		return model.DelimiterTab, trimCells(strings.Split(trimmed, "\t")), nil

	case strings.Count(trimmed, "|") >= 2:
		parts := strings.Split(trimmed, "|")
		if strings.HasPrefix(trimmed, "|") {
			parts = parts[1:]
		}
		if strings.HasSuffix(trimmed, "|") && len(parts) > 0 {
			parts = parts[:len(parts)-1]
		}
		return model.DelimiterPipe, trimCells(parts), nil

	case d.spaceSplit.MatchString(trimmed):
		indent := utf8.RuneCountInString(line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))])
		gaps := d.spaceSplit.FindAllStringIndex(trimmed, -1)
		offsets := make([]int, 0, len(gaps)+1)
		offsets = append(offsets, indent)
		for _, g := range gaps {
			offsets = append(offsets, indent+utf8.RuneCountInString(trimmed[:g[1]]))
		}
		return model.DelimiterSpaces, trimCells(d.spaceSplit.Split(trimmed, -1)), offsets
	}
	return model.DelimiterNone, nil, nil
}

func trimCells(parts []string) []string {
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return true
}
