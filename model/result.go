package model

import "time"

// DocumentMetadata describes how a document was processed
type DocumentMetadata struct {
	ExtractionMethod string  `json:"extraction_method"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Language         string  `json:"language"`
	WordCount        int     `json:"word_count"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
}

// DocumentInfo identifies the processed document
type DocumentInfo struct {
	Filename            string    `json:"filename"`
	Title               *string   `json:"title"`
	Pages               int       `json:"pages"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
}

// Content holds the classified outline and the detected tables
type Content struct {
	Sections []Section `json:"sections"`
	Tables   []Table   `json:"tables"`
}

// Result is the document-structure record produced for one input document
type Result struct {
	DocumentInfo DocumentInfo     `json:"document_info"`
	Content      Content          `json:"content"`
	Metadata     DocumentMetadata `json:"metadata"`
}

// NewResult assembles a Result. Nil slices are replaced with empty ones so
// the JSON form always carries arrays.
func NewResult(filename string, pages int, outline DocumentOutline, tables []Table, meta DocumentMetadata, at time.Time) *Result {
	var title *string
	if outline.Title != nil {
		t := outline.Title.Text
		title = &t
	}
	sections := outline.Sections
	if sections == nil {
		sections = []Section{}
	}
	if tables == nil {
		tables = []Table{}
	}
	return &Result{
		DocumentInfo: DocumentInfo{
			Filename:            filename,
			Title:               title,
			Pages:               pages,
			ProcessingTimestamp: at.UTC(),
		},
		Content: Content{
			Sections: sections,
			Tables:   tables,
		},
		Metadata: meta,
	}
}

// EmptyResult is the minimal record emitted when no backend could read the
// document: no sections, no tables and zero confidence.
func EmptyResult(filename, method string, at time.Time) *Result {
	return NewResult(filename, 0, DocumentOutline{}, nil, DocumentMetadata{
		ExtractionMethod: method,
		ConfidenceScore:  0,
		Language:         "und",
	}, at)
}

// Outline rebuilds the DocumentOutline carried by the result
func (r *Result) Outline() DocumentOutline {
	o := DocumentOutline{Sections: r.Content.Sections}
	if r.DocumentInfo.Title != nil {
		o.Title = &Heading{Text: *r.DocumentInfo.Title}
	}
	return o
}
