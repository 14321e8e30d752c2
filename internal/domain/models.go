package domain

// RequirementRow is one spreadsheet record under analysis.
// Index is the zero-based position in the uploaded workbook and stays stable
// for the life of the batch: output row i always corresponds to input row i.
type RequirementRow struct {
	Index  int
	Input  map[string]string // configured input column -> cell text (non-empty cells only)
	Output map[string]string // configured output column -> text, written once by the row processor
}

// EvidenceStrength is a coarse confidence tier summarizing how authoritative
// the retrieved web sources are for a given query.
type EvidenceStrength string

const (
	StrengthNone     EvidenceStrength = "None"
	StrengthLimited  EvidenceStrength = "Limited"
	StrengthModerate EvidenceStrength = "Moderate"
	StrengthHigh     EvidenceStrength = "High"
	StrengthError    EvidenceStrength = "Error"
)

// EvidenceResult is the outcome of one search query. Immutable once stored
// in the evidence cache.
type EvidenceResult struct {
	Content        string           `json:"content"`
	Sources        []string         `json:"sources"`
	SourceTypes    []string         `json:"source_types"`
	Strength       EvidenceStrength `json:"evidence_strength"`
	AuthorityCount int              `json:"authority_count"`
	CommunityCount int              `json:"community_count"`
}

// Canonical compliance verdict values. The judge's rubric allows exactly
// these four; the parser canonicalizes case at parse time.
const (
	VerdictYes       = "Yes"
	VerdictPartially = "Partially"
	VerdictNo        = "No"
	VerdictNotFound  = "Not found"
)
