package service

import "examgen_backend/internal/model"

// patternTemplate guides the model toward one question structure: a rule
// block plus one reference example in the target style.
type patternTemplate struct {
	Description string
	Example     string
}

var patternTemplates = map[model.Pattern]patternTemplate{
	model.PatternSingleCorrect: {
		Description: `1. The question MUST have four options where ONLY ONE choice is correct.
2. The question must not be a simple fact check. It must test deep conceptual understanding and high-standard factual precision.
3. Options must be concise yet deliberately tough and closely related to the correct answer, so that subtle distinctions are challenging.
4. When testing knowledge of systems or large topics, never use the most obvious examples; target obscure but relevant details.`,
		Example: `Question:
Which one of the following best describes the term 'Green Hydrogen'?

Options:
(a) Hydrogen produced from the electrolysis of water using renewable energy sources.
(b) Hydrogen produced from fossil fuels, with the associated carbon emissions captured and stored.
(c) Hydrogen that is produced as a by-product of industrial chemical processes.
(d) Hydrogen that is naturally occurring in geological formations.

Answer: A`,
	},
	model.PatternSingleIncorrect: {
		Description: `1. The question MUST have four options where ONLY ONE choice is INCORRECT, and the stem must ask for the incorrect one.
2. The question must not be a simple fact check. It must test deep conceptual understanding and high-standard factual precision.
3. Options must be concise yet deliberately tough and closely related, so that subtle distinctions are challenging.`,
		Example: `Question:
Which one of the following was NOT a feature of the Government of India Act of 1919?

Options:
(a) It introduced 'dyarchy' in the executive government of the provinces.
(b) It introduced separate communal electorates for Sikhs, Indian Christians, and Anglo-Indians.
(c) It provided for the establishment of a Public Service Commission.
(d) It provided for the establishment of an All-India Federation with provinces and princely states.

Answer: D`,
	},
	model.PatternMultiStatement2: {
		Description: `1. The question MUST contain exactly 2 short, independent statements numbered 1. and 2.
2. Begin with an opening context such as "With reference to ..." or "Consider the following statements:".
3. End with the closing question "Which of the statements given above is/are correct?" AFTER the last statement.
4. Options test knowledge of each statement: (a) 1 only (b) 2 only (c) Both 1 and 2 (d) Neither 1 nor 2.`,
		Example: `Question:
With reference to the Finance Commission of India, consider the following statements:
1. It is constituted every five years by the President of India.
2. Its recommendations are binding on the Government of India.
Which of the statements given above is/are correct?

Options:
(a) 1 only
(b) 2 only
(c) Both 1 and 2
(d) Neither 1 nor 2

Answer: A`,
	},
	model.PatternMultiStatement3: {
		Description: `1. The question MUST contain exactly 3 short, independent statements numbered 1., 2. and 3. Include all three; never truncate the last statement.
2. Begin with an opening context and end with the closing question "Which of the statements given above is/are correct?" AFTER statement 3.
3. Options combine the statements, e.g. (a) 1 and 2 only (b) 2 and 3 only (c) 1 and 3 only (d) 1, 2 and 3.`,
		Example: `Question:
Consider the following statements regarding the Western Ghats:
1. They are older than the Himalayan mountain ranges.
2. They receive rainfall from both the southwest and northeast monsoons.
3. They are a UNESCO World Heritage Site.
Which of the statements given above is/are correct?

Options:
(a) 1 and 2 only
(b) 2 and 3 only
(c) 1 and 3 only
(d) 1, 2 and 3

Answer: C`,
	},
	model.PatternMultiStatement4: {
		Description: `1. The question MUST contain exactly 4 short, independent statements numbered 1., 2., 3. and 4. FOUR statements, never three; statement 4 is mandatory.
2. Begin with an opening context and end with the closing question "Which of the statements given above is/are correct?" AFTER statement 4.
3. Options combine the statements, e.g. (a) 1 and 2 only (b) 2, 3 and 4 only (c) 1, 3 and 4 only (d) 1, 2, 3 and 4.`,
		Example: `Question:
With reference to the Constitution of India, consider the following statements:
1. The Preamble is a part of the Constitution.
2. The word 'secular' appeared in the original Preamble of 1950.
3. The Preamble can be amended under Article 368.
4. The Preamble is justiciable in a court of law.
Which of the statements given above is/are correct?

Options:
(a) 1 and 3 only
(b) 1, 2 and 3 only
(c) 2 and 4 only
(d) 1, 2, 3 and 4

Answer: A`,
	},
	model.PatternHowMany3: {
		Description: `1. The question MUST contain exactly 3 short statements numbered 1., 2. and 3.
2. End with the closing question "How many of the statements given above are correct?" AFTER statement 3.
3. Options MUST be: (a) Only one (b) Only two (c) All three (d) None.`,
		Example: `Question:
Consider the following statements about the Reserve Bank of India:
1. It was established on the recommendation of the Hilton Young Commission.
2. It was nationalised in 1949.
3. It acts as the lender of last resort for commercial banks.
How many of the statements given above are correct?

Options:
(a) Only one
(b) Only two
(c) All three
(d) None

Answer: C`,
	},
	model.PatternAssertionReason: {
		Description: `1. The question presents Statement-I (assertion) and Statement-II (reason), each a complete sentence.
2. End with the closing question "Which one of the following is correct in respect of the above statements?"
3. Options MUST discuss whether the statements are correct and whether Statement-II explains Statement-I:
(a) Both Statement-I and Statement-II are correct and Statement-II is the correct explanation for Statement-I
(b) Both Statement-I and Statement-II are correct and Statement-II is not the correct explanation for Statement-I
(c) Statement-I is correct but Statement-II is incorrect
(d) Statement-I is incorrect but Statement-II is correct
4. Do not always make (a) the answer; craft tricky incorrect statements to trap partially informed candidates.`,
		Example: `Question:
Statement-I: The equatorial regions experience low annual range of temperature.
Statement-II: The midday sun is almost overhead at the equator throughout the year.
Which one of the following is correct in respect of the above statements?

Options:
(a) Both Statement-I and Statement-II are correct and Statement-II is the correct explanation for Statement-I
(b) Both Statement-I and Statement-II are correct and Statement-II is not the correct explanation for Statement-I
(c) Statement-I is correct but Statement-II is incorrect
(d) Statement-I is incorrect but Statement-II is correct

Answer: A`,
	},
	model.PatternSequencing: {
		Description: `1. The question lists exactly 4 items to be arranged in a meaningful order (chronological, geographical, or procedural), numbered 1. to 4.
2. The stem must name the ordering criterion, e.g. "Arrange the following in correct chronological order" or "from north to south".
3. Options are digit sequences like 2-1-4-3. The CORRECT option must NOT be 1-2-3-4 or 4-3-2-1; shuffle the listed items so the right sequence is non-trivial.`,
		Example: `Question:
Arrange the following events of the Indian freedom struggle in correct chronological order:
1. Quit India Movement
2. Dandi March
3. Cripps Mission
4. Cabinet Mission
Select the correct answer using the codes given below.

Options:
(a) 2-3-1-4
(b) 2-1-3-4
(c) 3-2-1-4
(d) 2-3-4-1

Answer: A`,
	},
	model.PatternMatchingPairs: {
		Description: `1. The question presents 3 or 4 pairs (e.g. place : river, scheme : ministry), each pair on its own line.
2. The stem asks which of the pairs are correctly matched, e.g. "Which of the pairs given above is/are correctly matched?"
3. Include at least one subtly wrong pair; options combine pair numbers.`,
		Example: `Question:
Consider the following pairs:
1. Bhitarkanika : Odisha
2. Point Calimere : Kerala
3. Deepor Beel : Assam
Which of the pairs given above is/are correctly matched?

Options:
(a) 1 only
(b) 1 and 3 only
(c) 2 and 3 only
(d) 1, 2 and 3

Answer: B`,
	},
}

var cognitiveTemplates = map[string]string{
	"recall":        "Recall/Recognition: the candidate retrieves a precise fact or definition from memory.",
	"comprehension": "Comprehension: the candidate interprets a concept or relationship, not just a stored fact.",
	"application":   "Application: the candidate applies a known concept to an unfamiliar scenario.",
	"analysis":      "Analysis/Evaluation: the candidate weighs statements against each other and eliminates near-correct distractors.",
}

var difficultyTemplates = map[string]string{
	"easy":     "Easy - directly answerable from standard preparation material.",
	"moderate": "Moderate - standard preliminary examination level; requires solid preparation.",
	"hard":     "Hard - obscure but syllabus-relevant details; separates the top percentile.",
}
