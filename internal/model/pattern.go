package model

// Pattern is the structural type of a multiple-choice question. The set is
// fixed; every pattern renders four options with a single correct key.
type Pattern string

const (
	PatternSingleCorrect   Pattern = "single_correct"
	PatternSingleIncorrect Pattern = "single_incorrect"
	PatternMultiStatement2 Pattern = "multi_statement_2"
	PatternMultiStatement3 Pattern = "multi_statement_3"
	PatternMultiStatement4 Pattern = "multi_statement_4"
	PatternHowMany3        Pattern = "how_many_3"
	PatternAssertionReason Pattern = "assertion_reason"
	PatternSequencing      Pattern = "sequencing"
	PatternMatchingPairs   Pattern = "matching_pairs"
)

// PatternStructure declares the structural contract a generated question has
// to satisfy before it is accepted.
type PatternStructure struct {
	Label          string
	OptionCount    int
	CorrectCount   int
	StatementCount int // 0 when the pattern carries no numbered statements
	// ClosingPhrases: at least one must appear in the stem (lowercased match).
	ClosingPhrases []string
	// Critical patterns historically fail structure checks more often and get
	// extra generation attempts.
	Critical bool
}

var patternStructures = map[Pattern]PatternStructure{
	PatternSingleCorrect: {
		Label:        "Standard Single-Correct",
		OptionCount:  4,
		CorrectCount: 1,
	},
	PatternSingleIncorrect: {
		Label:        "Standard Single-Incorrect",
		OptionCount:  4,
		CorrectCount: 1,
	},
	PatternMultiStatement2: {
		Label:          "Multiple-Statement-2",
		OptionCount:    4,
		CorrectCount:   1,
		StatementCount: 2,
		ClosingPhrases: multiStatementClosings,
	},
	PatternMultiStatement3: {
		Label:          "Multiple-Statement-3",
		OptionCount:    4,
		CorrectCount:   1,
		StatementCount: 3,
		ClosingPhrases: multiStatementClosings,
	},
	PatternMultiStatement4: {
		Label:          "Multiple-Statement-4",
		OptionCount:    4,
		CorrectCount:   1,
		StatementCount: 4,
		ClosingPhrases: multiStatementClosings,
		Critical:       true,
	},
	PatternHowMany3: {
		Label:          "How-Many-Statement-3",
		OptionCount:    4,
		CorrectCount:   1,
		StatementCount: 3,
		ClosingPhrases: howManyClosings,
	},
	PatternAssertionReason: {
		Label:          "Assertion-Reason",
		OptionCount:    4,
		CorrectCount:   1,
		StatementCount: 2,
		ClosingPhrases: assertionReasonClosings,
		Critical:       true,
	},
	PatternSequencing: {
		Label:        "Sequencing",
		OptionCount:  4,
		CorrectCount: 1,
	},
	PatternMatchingPairs: {
		Label:        "Matching-Pairs",
		OptionCount:  4,
		CorrectCount: 1,
	},
}

var multiStatementClosings = []string{
	"which of the statements given above is/are correct",
	"which of the statements given above is/are not correct",
	"which of the statements given above are incorrect",
	"which of the above statements is/are correct",
	"which of the above statements is/are not correct",
}

var howManyClosings = []string{
	"how many of the statements given above are correct",
	"how many of the above statements are correct",
	"how many of the statements given above is/are correct",
}

var assertionReasonClosings = []string{
	"which one of the following is correct in respect of the above statements",
	"which of the following is correct in respect of the above",
}

// AnswerKeys are the permitted answer letters, index-aligned with options.
var AnswerKeys = []string{"A", "B", "C", "D"}

// Structure returns the structural contract for p. ok is false for unknown
// patterns.
func (p Pattern) Structure() (PatternStructure, bool) {
	s, ok := patternStructures[p]
	return s, ok
}

func (p Pattern) Valid() bool {
	_, ok := patternStructures[p]
	return ok
}

// AllPatterns lists patterns in declaration order.
func AllPatterns() []Pattern {
	return []Pattern{
		PatternSingleCorrect,
		PatternSingleIncorrect,
		PatternMultiStatement2,
		PatternMultiStatement3,
		PatternMultiStatement4,
		PatternHowMany3,
		PatternAssertionReason,
		PatternSequencing,
		PatternMatchingPairs,
	}
}

// AnswerIndex maps an answer letter to its option index, -1 if out of range.
func AnswerIndex(key string) int {
	for i, k := range AnswerKeys {
		if k == key {
			return i
		}
	}
	return -1
}
