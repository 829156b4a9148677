package model

// Case is a finalized product classification, used as precedent.
// Cases are append-only: once written to the case store they are never
// mutated, only removed via explicit history management.
type Case struct {
	ID              string       `json:"id"`
	ProductName     string       `json:"product_name"`
	Brand           string       `json:"brand,omitempty"`
	AssignedCode    string       `json:"assigned_code"`
	AssignedBy      string       `json:"assigned_by,omitempty"` // "consultant" or "llm"
	AssignmentDate  string       `json:"assignment_date"`       // YYYY-MM-DD
	SourceType      string       `json:"source_type,omitempty"` // e.g. "pdf_image"
	SourcePath      string       `json:"source_path,omitempty"`
	CompositionText string       `json:"composition_text"`
	Features        CaseFeatures `json:"features"`
	Tags            []string     `json:"tags,omitempty"`
	ShortReason     string       `json:"short_reason"`
	Verified        bool         `json:"verified"`
	Quality         string       `json:"quality,omitempty"`
	VersionDate     string       `json:"version_date,omitempty"`
}

// CaseFeatures is the free-form attribute mapping the classifier fills
// in from the safety data sheet.
type CaseFeatures struct {
	Use                  string   `json:"use,omitempty"`
	Form                 string   `json:"form,omitempty"` // liquid/powder/solid
	NonvolatilePct       *float64 `json:"nonvolatile_pct"`
	SolventPresent       bool     `json:"solvent_present"`
	PolymerFamily        *string  `json:"polymer_family"`
	IsSurfactant         bool     `json:"is_surfactant"`
	IsPrimaryPolymerForm bool     `json:"is_primary_polymer_form"`
	IsPaintOrVarnish     bool     `json:"is_paint_or_varnish"`
	Ionicity             string   `json:"ionicity,omitempty"`
}

// SearchLogEntry is one line of the search history log.
type SearchLogEntry struct {
	Timestamp      string `json:"timestamp"`
	Query          string `json:"query"`
	SummaryResults string `json:"summary_results"`
	FullResults    []Case `json:"full_results,omitempty"`
}

// ClassificationLogEntry is one line of the classification history log.
type ClassificationLogEntry struct {
	Timestamp   string `json:"timestamp"`
	Filename    string `json:"filename"`
	ProductName string `json:"product_name"`
	Composition string `json:"composition"`
	Response    string `json:"response"`
}
