package service

import (
	"fmt"
	"strings"

	"examgen_backend/internal/model"
	"examgen_backend/internal/util"
)

// referenceMarker separates a blueprint from researched reference material
// appended to it.
const referenceMarker = "--- REFERENCE MATERIAL"

// PromptCrafter renders a generation request into the system and user prompts
// for the model. Pure: same inputs, same output, no external calls.
type PromptCrafter struct{}

func NewPromptCrafter() *PromptCrafter {
	return &PromptCrafter{}
}

// CraftSystemPrompt builds the system instruction for one request.
// Pattern rules take priority over cognitive level and difficulty.
func (pc *PromptCrafter) CraftSystemPrompt(req model.GenerationRequest) (string, error) {
	tmpl, ok := patternTemplates[req.Pattern]
	if !ok {
		return "", util.NewConfigurationError("no prompt template for pattern %q", req.Pattern)
	}

	patternSection := fmt.Sprintf(`### SPECIFIC QUESTION PATTERN INSTRUCTION [HIGHEST PRIORITY]
You MUST follow the question pattern and logic defined below. This is your PRIMARY constraint.
%s

**Reference Example:**
%s`, tmpl.Description, tmpl.Example)

	cognitiveSection := "### COGNITIVE OBJECTIVE [Secondary Priority]\nTarget Cognitive Level: standard comprehension/conceptual level.\nIf the cognitive level conflicts with the pattern requirements above, prioritize the PATTERN."
	if desc, ok := cognitiveTemplates[strings.ToLower(req.Cognitive)]; ok {
		cognitiveSection = fmt.Sprintf("### COGNITIVE OBJECTIVE [Secondary Priority]\nTarget Cognitive Level: %s\nIf the cognitive level conflicts with the pattern requirements above, prioritize the PATTERN.", desc)
	}

	difficulty := "Moderate - standard preliminary examination level."
	if desc, ok := difficultyTemplates[strings.ToLower(req.Difficulty)]; ok {
		difficulty = desc
	}

	return fmt.Sprintf(`You are an expert Civil Services Preliminary Examination question setter.

## Your Expertise
- The complete General Studies Paper I syllabus.
- The tone, structure and conceptual layering of previous-year questions.
- The art of framing close, plausible options and balanced distractors.

## Core Task
Generate ONE question strictly based on the provided question blueprint.
- Difficulty target: %s
- The question must align precisely with the blueprint.

%s

%s

## General Guidelines
1. The stem carries one central idea; avoid excessive clauses and complex jargon.
2. For multi-statement questions, ALWAYS include both the opening context and the closing question, and include every statement completely.
3. There must be a single best and defensible answer. All options should be homogeneous in form and approximately equal in length; every distractor must be plausible to a partially informed candidate. Use "None of the above"/"All of the above" sparingly.
4. Do not favour any particular option letter; order options so that the mandated answer key holds.

## Required Output Format
Respond with a single JSON object and nothing else:
{"question": "<full stem including statements>", "options": ["<option A>", "<option B>", "<option C>", "<option D>"], "answer": "<A|B|C|D>", "explanation": "<why the answer is correct>"}`,
		difficulty, patternSection, cognitiveSection), nil
}

// CraftUserPrompt builds the per-attempt user prompt: the blueprint, the
// mandated answer key, and any correction hints accumulated from earlier
// failed attempts.
func (pc *PromptCrafter) CraftUserPrompt(blueprintText, answerKey string, hints []string) string {
	var b strings.Builder

	b.WriteString("## Use the details below to generate the question.\n\n")

	if strings.Contains(blueprintText, referenceMarker) {
		b.WriteString("### IMPORTANT: Reference material is provided below the blueprint. Use its facts, data points and dates as the primary source of truth; do not rely on training data for current affairs.\n\n")
	}

	b.WriteString("### Question Blueprint\n")
	b.WriteString(blueprintText)
	b.WriteString("\n\n")

	if len(hints) > 0 {
		b.WriteString("### CORRECTIONS REQUIRED [previous attempts were rejected]\n")
		for _, h := range hints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "### MANDATORY Constraint: generate the question and options in such a manner that the answer is %s.\n\n", answerKey)
	b.WriteString("### Now generate the question.\n")

	return b.String()
}

// BlueprintText renders the deterministic blueprint for a request. Used
// directly when LLM drafting is disabled or fails.
func BlueprintText(req model.GenerationRequest) string {
	tmplLabel := string(req.Pattern)
	if s, ok := req.Pattern.Structure(); ok {
		tmplLabel = s.Label
	}

	var b strings.Builder
	if req.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	}
	if req.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	}
	fmt.Fprintf(&b, "Format: %s\n", tmplLabel)
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	}
	if req.Cognitive != "" {
		fmt.Fprintf(&b, "Cognitive Skill: %s\n", req.Cognitive)
	}
	return strings.TrimRight(b.String(), "\n")
}
