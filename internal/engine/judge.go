package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

// systemPrompt frames the model as a banking solutions analyst and pins the
// rubric: exactly four verdicts, "Partially" only with specific evidence of
// conditional support, and a mandatory EXPLANATION line.
const systemPrompt = `You are an expert AI assistant specializing in Oracle banking solutions and procurement analysis for the BFSI sector.
You provide evidence-based, unbiased assessments of technical requirements against Oracle capabilities including
FLEXCUBE, OFSAA, OBP, Digital Banking, and related Oracle banking technologies.

Evaluate each requirement independently and provide decisive responses using exactly one of these four values:
- Yes: Strong evidence of full support
- Partially: Clear evidence of limited/conditional support; never use this as a default when evidence is unclear
- No: Strong evidence of no support or incompatibility
- Not found: Insufficient evidence for determination

Generate professional, descriptive explanations as a subject matter expert.
Always include an EXPLANATION: line summarizing the reasoning behind your response.`

const analystRole = "You are an expert Oracle banking solutions analyst. Provide evidence-based, unbiased assessments."

// Judge asks the LLM for a compliance assessment of one requirement.
type Judge struct {
	completer domain.Completer
	cfg       config.EngineConfig
	logger    *zap.Logger
}

// NewJudge creates a compliance judge.
func NewJudge(completer domain.Completer, cfg config.EngineConfig, logger *zap.Logger) *Judge {
	return &Judge{completer: completer, cfg: cfg, logger: logger}
}

// Judge builds the assessment prompt and returns the model's raw reply.
// A completion failure is returned as a text payload describing the failure
// rather than an error, so the downstream parser degrades to its fallback
// fills instead of aborting the row.
func (j *Judge) Judge(ctx context.Context, inputs map[string]string, inputCols []string, evidence *domain.EvidenceResult, userPrompt string, outputCols []string) string {
	prompt := j.buildUserPrompt(inputs, inputCols, evidence, userPrompt, outputCols)

	reply, err := j.completer.Complete(ctx, analystRole, prompt)
	if err != nil {
		j.logger.Warn("Completion failed, degrading to fallback payload", zap.Error(err))
		return fmt.Sprintf("LLM analysis failed: %v", err)
	}
	return reply
}

// buildUserPrompt assembles the rubric, caller instructions, input fields
// (each capped to keep the prompt bounded), evidence content, and the
// expected output column names.
func (j *Judge) buildUserPrompt(inputs map[string]string, inputCols []string, evidence *domain.EvidenceResult, userPrompt string, outputCols []string) string {
	var fields []string
	for _, col := range inputCols {
		val, ok := inputs[col]
		if !ok {
			continue
		}
		if len(val) > j.cfg.InputFieldCap {
			val = val[:j.cfg.InputFieldCap]
		}
		fields = append(fields, fmt.Sprintf("%s: %s", col, val))
	}

	content := ""
	if evidence != nil {
		content = evidence.Content
	}

	return fmt.Sprintf(`%s

User Instructions: %s

Excel Input Requirement:
%s

Web Search Results:
%s

Required Output Columns: %s

Provide structured response with column names and values, plus an EXPLANATION section.`,
		systemPrompt,
		userPrompt,
		strings.Join(fields, "\n"),
		content,
		strings.Join(outputCols, ", "))
}
