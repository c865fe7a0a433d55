package tables

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tsawler/pdfoutline/model"
)

// ErrTableValidation reports a table candidate whose rows do not all match
// the header's cell count. Candidates failing validation are dropped.
var ErrTableValidation = errors.New("table validation failed")

// Detector is the interface for table detection algorithms
type Detector interface {
	// Detect finds tables in the raw text of one page. Returned tables carry
	// the page number; IDs are assigned by DetectAll.
	Detect(page int, raw string) []model.Table

	// Name returns the detector name
	Name() string

	// Configure sets detector parameters
	Configure(config Config) error
}

// Config holds detector configuration
type Config struct {
	// MinRows is the minimum number of lines, headers included, in a table.
	// Default: 3
	MinRows int

	// MinCols is the minimum number of cells per line.
	// Default: 2
	MinCols int

	// MinSpaces is the shortest run of spaces treated as a column gap.
	// Default: 2
	MinSpaces int

	// AlignTolerance is how far, in characters, a column of a space-aligned
	// row may start from the matching header column.
	// Default: 2
	AlignTolerance int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:        3,
		MinCols:        2,
		MinSpaces:      2,
		AlignTolerance: 2,
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.MinRows < 2 {
		return fmt.Errorf("min rows must be at least 2, got %d", c.MinRows)
	}
	if c.MinCols < 2 {
		return fmt.Errorf("min cols must be at least 2, got %d", c.MinCols)
	}
	if c.MinSpaces < 2 {
		return fmt.Errorf("min spaces must be at least 2, got %d", c.MinSpaces)
	}
	if c.AlignTolerance < 0 {
		return fmt.Errorf("align tolerance must not be negative, got %d", c.AlignTolerance)
	}
	return nil
}

// Validate returns an error wrapping ErrTableValidation when t breaks the
// row width invariant.
func Validate(t model.Table) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrTableValidation, err)
	}
	return nil
}

// PageText is the raw text of one page
type PageText struct {
	Number int
	Text   string
}

// DetectAll runs d over every page in order and numbers the tables found
// from 1 across the whole document.
func DetectAll(d Detector, pages []PageText) []model.Table {
	var out []model.Table
	for _, p := range pages {
		for _, t := range d.Detect(p.Number, p.Text) {
			t.ID = len(out) + 1
			out = append(out, t)
		}
	}
	return out
}

// DetectorRegistry holds registered detector constructors
type DetectorRegistry struct {
	mu        sync.RWMutex
	factories map[string]func() Detector
}

// NewRegistry creates a new detector registry
func NewRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		factories: make(map[string]func() Detector),
	}
}

// Register registers a detector constructor under name
func (r *DetectorRegistry) Register(name string, factory func() Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a fresh detector by name, or nil
func (r *DetectorRegistry) Get(name string) Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.factories[name]; ok {
		return f()
	}
	return nil
}

// List returns all registered detector names, sorted
func (r *DetectorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry
var globalRegistry = NewRegistry()

// RegisterDetector registers a detector constructor globally
func RegisterDetector(name string, factory func() Detector) {
	globalRegistry.Register(name, factory)
}

// GetDetector returns a fresh detector by name, or nil
func GetDetector(name string) Detector {
	return globalRegistry.Get(name)
}

// ListDetectors returns all registered detector names
func ListDetectors() []string {
	return globalRegistry.List()
}

func init() {
	RegisterDetector(DelimitedName, func() Detector { return NewDelimitedDetector() })
}
