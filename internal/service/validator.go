package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"examgen_backend/internal/model"
)

// Candidate is the parsed shape of one model response, before validation.
type Candidate struct {
	Stem        string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

var (
	numberedStmtRe = regexp.MustCompile(`(?m)(?:^|\n)\s*(\d+)\.\s+`)
	romanStmtRe    = regexp.MustCompile(`(?mi)(?:^|\n)\s*(I{1,3}|IV|V)\.\s+`)
	labelledStmtRe = regexp.MustCompile(`(?i)Statement[-\s]*(I{1,3}|IV|\d+)`)
	sequenceRe     = regexp.MustCompile(`\d+\s*[-–—]\s*\d+\s*[-–—]\s*\d+\s*[-–—]\s*\d+`)
	dashNormRe     = regexp.MustCompile(`[–—]`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

var romanValues = map[string]int{"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5}

// ValidateCandidate runs the structural rule set for a pattern and returns
// every violation found. An empty slice means the candidate is accepted.
func ValidateCandidate(c *Candidate, pattern model.Pattern) []string {
	structure, ok := pattern.Structure()
	if !ok {
		return []string{fmt.Sprintf("unknown pattern %q", pattern)}
	}

	var violations []string

	if strings.TrimSpace(c.Stem) == "" {
		violations = append(violations, "question stem is empty")
	}

	if len(c.Options) != structure.OptionCount {
		violations = append(violations, fmt.Sprintf("expected %d options but got %d", structure.OptionCount, len(c.Options)))
	}

	seen := make(map[string]bool, len(c.Options))
	for i, opt := range c.Options {
		norm := strings.ToLower(strings.TrimSpace(opt))
		if norm == "" {
			violations = append(violations, fmt.Sprintf("option %s is empty", optionLetter(i)))
			continue
		}
		if seen[norm] {
			violations = append(violations, fmt.Sprintf("option %s duplicates another option", optionLetter(i)))
		}
		seen[norm] = true
	}

	answer := strings.ToUpper(strings.TrimSpace(c.Answer))
	answerIdx := model.AnswerIndex(answer)
	if answerIdx < 0 || answerIdx >= structure.OptionCount {
		violations = append(violations, fmt.Sprintf("answer %q is not a single key in A-%s", c.Answer, optionLetter(structure.OptionCount-1)))
		answerIdx = -1
	}

	if structure.StatementCount > 0 {
		if got := countStatements(c.Stem); got < structure.StatementCount {
			violations = append(violations, fmt.Sprintf("expected %d statements but found only %d; the last statement may be missing", structure.StatementCount, got))
		}
	}

	if len(structure.ClosingPhrases) > 0 {
		stemLower := strings.ToLower(c.Stem)
		found := false
		for _, phrase := range structure.ClosingPhrases {
			if strings.Contains(stemLower, phrase) {
				found = true
				break
			}
		}
		if !found {
			violations = append(violations, fmt.Sprintf("missing closing question (e.g. %q)", structure.ClosingPhrases[0]))
		}
	}

	if pattern == model.PatternSequencing && answerIdx >= 0 && answerIdx < len(c.Options) {
		if seq, bad := forbiddenSequence(c.Options[answerIdx]); bad {
			violations = append(violations, fmt.Sprintf("forbidden sequence %q as the correct answer; it is too predictable", seq))
		}
	}

	if pattern == model.PatternAssertionReason && len(c.Options) > 0 {
		if !hasAssertionReasonShape(c.Options[0]) {
			violations = append(violations, "options do not follow the assertion-reason format; they must discuss whether the statements are correct and whether one explains the other")
		}
	}

	return violations
}

// countStatements returns the highest statement number found in the stem,
// across plain numbering (1., 2.), roman numbering (I., II.) and labelled
// statements (Statement-I, Statement-2).
func countStatements(stem string) int {
	max := 0

	for _, m := range numberedStmtRe.FindAllStringSubmatch(stem, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}

	for _, m := range romanStmtRe.FindAllStringSubmatch(stem, -1) {
		if n := romanValues[strings.ToLower(m[1])]; n > max {
			max = n
		}
	}

	for _, m := range labelledStmtRe.FindAllStringSubmatch(stem, -1) {
		token := strings.ToLower(m[1])
		if n, ok := romanValues[token]; ok {
			if n > max {
				max = n
			}
		} else if n, err := strconv.Atoi(token); err == nil && n > max {
			max = n
		}
	}

	return max
}

// forbiddenSequence reports whether the option encodes a trivially ordered
// answer sequence (1-2-3-4 or its reverse).
func forbiddenSequence(option string) (string, bool) {
	match := sequenceRe.FindString(option)
	if match == "" {
		return "", false
	}

	seq := spaceRe.ReplaceAllString(match, "")
	seq = dashNormRe.ReplaceAllString(seq, "-")

	return seq, seq == "1-2-3-4" || seq == "4-3-2-1"
}

func hasAssertionReasonShape(optionA string) bool {
	lower := strings.ToLower(optionA)
	for _, kw := range []string{"both", "correct", "incorrect", "explains", "explanation"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func optionLetter(i int) string {
	if i >= 0 && i < len(model.AnswerKeys) {
		return model.AnswerKeys[i]
	}
	return "?"
}
