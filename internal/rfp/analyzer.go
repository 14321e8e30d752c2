package rfp

import (
	"regexp"
	"sort"
	"strings"
)

// Classification confidence tiers.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Fallback categories when classification cannot decide.
const (
	CategoryUnknown = "Not enough information"
	CategoryGeneral = "General Services"
)

// Classification is the outcome of categorizing an RFP document.
type Classification struct {
	Category        string   `json:"category"`
	Confidence      string   `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// SubmissionInfo holds submission-related signals extracted from RFP text.
type SubmissionInfo struct {
	IssuanceDate          string `json:"issuance_date,omitempty"`
	SubmissionDeadline    string `json:"submission_deadline,omitempty"`
	ClarificationDeadline string `json:"clarification_deadline,omitempty"`
	SubmissionMethod      string `json:"submission_method,omitempty"`
	Contacts              string `json:"contacts,omitempty"`
}

// Analysis bundles everything the analyzer derives from an RFP document.
type Analysis struct {
	Classification Classification `json:"classification"`
	Submission     SubmissionInfo `json:"submission_info"`
	Summary        string         `json:"summary"`
}

// catalog maps engagement categories to the keywords that signal them.
var catalog = map[string][]string{
	"Resource Augmentation": {
		"resource augmentation", "staff augmentation", "contract staffing",
		"augmentation support", "manpower supply", "resource support", "team augmentation",
	},
	"Upgradation": {
		"upgrade", "upgradation", "modernization", "migration", "version upgrade",
		"enhancement", "technology refresh", "system upgrade",
	},
	"Managed Service": {
		"managed service", "managed services", "operations and maintenance",
		"operation & maintenance", "support services", "outsourcing",
		"service management", "service desk", "24x7 support", "managed operations",
	},
	"New Installation": {
		"implementation", "installation", "deploy", "deployment", "rollout",
		"greenfield", "set up", "setup", "new system", "install", "core banking system implementation",
	},
}

// keywordPatterns precompiles a word-boundary regexp per catalog keyword.
var keywordPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, keywords := range catalog {
		for _, kw := range keywords {
			out[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
		}
	}
	return out
}()

const (
	highScoreMin   = 4
	mediumScoreMin = 2

	summaryLimit = 420
)

// Classify assigns an engagement category to RFP text by tallying keyword
// occurrences per category with word-boundary matching.
func Classify(text string) Classification {
	if strings.TrimSpace(text) == "" {
		return Classification{Category: CategoryUnknown, Confidence: ConfidenceLow, MatchedKeywords: []string{}}
	}

	normalized := strings.ToLower(text)

	type tally struct {
		category string
		score    int
		hits     []string
	}

	var tallies []tally
	for category, keywords := range catalog {
		t := tally{category: category}
		for _, kw := range keywords {
			n := len(keywordPatterns[kw].FindAllStringIndex(normalized, -1))
			if n > 0 {
				t.score += n
				t.hits = append(t.hits, kw)
			}
		}
		tallies = append(tallies, t)
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].score != tallies[j].score {
			return tallies[i].score > tallies[j].score
		}
		return tallies[i].category < tallies[j].category
	})

	top := tallies[0]
	if top.score == 0 {
		return Classification{Category: CategoryGeneral, Confidence: ConfidenceLow, MatchedKeywords: []string{}}
	}

	confidence := ConfidenceLow
	switch {
	case top.score >= highScoreMin:
		confidence = ConfidenceHigh
	case top.score >= mediumScoreMin:
		confidence = ConfidenceMedium
	}

	return Classification{Category: top.category, Confidence: confidence, MatchedKeywords: top.hits}
}

// signalPatterns lists, per submission field, the label patterns tried in
// order; the first match wins.
var signalPatterns = map[string][]*regexp.Regexp{
	"issuance_date": compileSignals(
		`date of issuance[:\-]\s*([^\n]+)`,
		`issuance date[:\-]\s*([^\n]+)`,
		`issue date[:\-]\s*([^\n]+)`,
	),
	"submission_deadline": compileSignals(
		`submission deadline[:\-]\s*([^\n]+)`,
		`proposal submission deadline[:\-]\s*([^\n]+)`,
		`submission date[:\-]\s*([^\n]+)`,
		`closing date[:\-]\s*([^\n]+)`,
		`last date for submission[:\-]\s*([^\n]+)`,
		`deadline[:\-]\s*([^\n]+)`,
	),
	"clarification_deadline": compileSignals(
		`clarification deadline[:\-]\s*([^\n]+)`,
		`clarifications deadline[:\-]\s*([^\n]+)`,
		`questions deadline[:\-]\s*([^\n]+)`,
		`query deadline[:\-]\s*([^\n]+)`,
		`last date for clarifications[:\-]\s*([^\n]+)`,
	),
	"submission_method": compileSignals(
		`submission method[:\-]\s*([^\n]+)`,
		`mode of submission[:\-]\s*([^\n]+)`,
		`submission process[:\-]\s*([^\n]+)`,
		`submission email[:\-]\s*([^\n]+)`,
		`submission address[:\-]\s*([^\n]+)`,
	),
	"contacts": compileSignals(
		`contact person[:\-]\s*([^\n]+)`,
		`point of contact[:\-]\s*([^\n]+)`,
		`contact[:\-]\s*([^\n]+)`,
		`email[:\-]\s*([^\n]+)`,
	),
}

func compileSignals(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// ExtractSubmissionInfo pulls submission signals out of RFP text by trying
// each field's label patterns in priority order.
func ExtractSubmissionInfo(text string) SubmissionInfo {
	find := func(field string) string {
		for _, re := range signalPatterns[field] {
			if m := re.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
				return strings.TrimSpace(m[1])
			}
		}
		return ""
	}

	return SubmissionInfo{
		IssuanceDate:          find("issuance_date"),
		SubmissionDeadline:    find("submission_deadline"),
		ClarificationDeadline: find("clarification_deadline"),
		SubmissionMethod:      find("submission_method"),
		Contacts:              find("contacts"),
	}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// Summarize collapses whitespace and truncates the text to a short snippet.
func Summarize(text string) string {
	cleaned := strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if len(cleaned) <= summaryLimit {
		return cleaned
	}
	return cleaned[:summaryLimit] + "…"
}

// Analyze runs classification, submission signal extraction and
// summarization over one RFP document.
func Analyze(text string) Analysis {
	return Analysis{
		Classification: Classify(text),
		Submission:     ExtractSubmissionInfo(text),
		Summary:        Summarize(text),
	}
}
