package parser

import (
	"regexp"
	"strings"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

// ColumnRole classifies an output column by its semantic role, derived from
// keywords in the column name.
type ColumnRole int

const (
	RoleOther ColumnRole = iota
	RoleResponse
	RoleRemark
)

var (
	responseKeywords = []string{"RESPONSE", "ANSWER", "COMPLIANCE"}
	remarkKeywords   = []string{"REMARK", "COMMENT", "NOTES"}

	// labelPattern matches "LABEL: value" lines; labels are letters,
	// apostrophes, underscores and spaces.
	labelPattern = regexp.MustCompile(`^([A-Za-z_'\s]+?)\s*:\s*(.*)$`)
)

// synonymRoles maps well-known labels the model emits to a column role.
var synonymRoles = map[string]ColumnRole{
	"RESPONSE":        RoleResponse,
	"COMPLIANCE":      RoleResponse,
	"ANSWER":          RoleResponse,
	"VENDOR RESPONSE": RoleResponse,
	"REMARK":          RoleRemark,
	"REMARKS":         RoleRemark,
	"COMMENT":         RoleRemark,
	"COMMENTS":        RoleRemark,
	"NOTES":           RoleRemark,
	"VENDOR REMARKS":  RoleRemark,
	"VENDOR COMMENTS": RoleRemark,
}

// Classify returns the semantic role of an output column name.
func Classify(column string) ColumnRole {
	upper := strings.ToUpper(column)
	for _, kw := range responseKeywords {
		if strings.Contains(upper, kw) {
			return RoleResponse
		}
	}
	for _, kw := range remarkKeywords {
		if strings.Contains(upper, kw) {
			return RoleRemark
		}
	}
	return RoleOther
}

// Parsed holds the extracted column values and the explanation side channel.
type Parsed struct {
	Columns     map[string]string
	Explanation string
}

// Fallback fills for columns the model left empty.
const (
	fallbackResponse = "Not found"
	fallbackRemark   = "Based on comprehensive analysis of available Oracle documentation and industry resources, specific information regarding this requirement could not be definitively established."
)

// Parse extracts output column values from raw model text. It walks the text
// line by line: a "LABEL: value" line opens a section for the mapped column,
// following plain lines extend that section, and an EXPLANATION line is
// captured separately without disturbing the current section. Labels that
// map to no output column are discarded along with their content.
//
// Parse is a pure function: identical input always yields identical output.
func Parse(raw string, outputCols []string) *Parsed {
	results := make(map[string]string, len(outputCols))
	for _, col := range outputCols {
		results[col] = ""
	}

	var (
		currentCol  string
		buffer      []string
		explanation string
	)

	flush := func() {
		if currentCol == "" {
			return
		}
		if _, ok := results[currentCol]; ok {
			results[currentCol] = strings.TrimSpace(strings.Join(buffer, "\n"))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "EXPLANATION:") {
			if idx := strings.Index(line, ":"); idx >= 0 {
				explanation = strings.TrimSpace(line[idx+1:])
			}
			continue
		}

		m := labelPattern.FindStringSubmatch(line)
		if m == nil {
			if currentCol != "" {
				buffer = append(buffer, line)
			}
			continue
		}

		flush()
		currentCol = mapLabel(strings.TrimSpace(m[1]), outputCols)
		buffer = []string{strings.TrimSpace(m[2])}
	}
	flush()

	for _, col := range outputCols {
		if strings.TrimSpace(results[col]) != "" {
			continue
		}
		switch Classify(col) {
		case RoleResponse:
			results[col] = fallbackResponse
		case RoleRemark:
			results[col] = fallbackRemark
		}
	}

	canonicalizeVerdicts(results, outputCols)

	return &Parsed{Columns: results, Explanation: explanation}
}

// mapLabel resolves a raw label to one of the configured output columns.
// Exact matches win, then the synonym table, then keyword clusters on the
// raw label itself. An unresolvable label returns "".
func mapLabel(rawLabel string, outputCols []string) string {
	upper := strings.ToUpper(rawLabel)

	for _, col := range outputCols {
		if strings.EqualFold(col, rawLabel) {
			return col
		}
	}

	role, ok := synonymRoles[upper]
	if !ok {
		role = Classify(rawLabel)
	}
	if role == RoleOther {
		return ""
	}

	for _, col := range outputCols {
		if Classify(col) == role {
			return col
		}
	}
	return ""
}

// canonicalizeVerdicts normalizes response-column values that match one of
// the four allowed verdicts, so "YES" and "yes" both come out as "Yes".
func canonicalizeVerdicts(results map[string]string, outputCols []string) {
	verdicts := []string{domain.VerdictYes, domain.VerdictPartially, domain.VerdictNo, domain.VerdictNotFound}
	for _, col := range outputCols {
		if Classify(col) != RoleResponse {
			continue
		}
		value := strings.TrimSpace(results[col])
		for _, v := range verdicts {
			if strings.EqualFold(value, v) {
				results[col] = v
				break
			}
		}
	}
}
