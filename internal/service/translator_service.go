package service

import (
	"context"
	"fmt"
	"strings"

	"examgen_backend/internal/config"
	"examgen_backend/pkg/logger"
	"examgen_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Translation is the Hindi rendering of a generated question.
type Translation struct {
	Stem        string   `json:"question"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation"`
}

// TranslatorService renders approved questions into Hindi. Translation is a
// soft dependency: a run proceeds with the English text when the translation
// cannot be obtained, and the question is flagged incomplete.
type TranslatorService struct {
	client ChatClient
	ai     config.AIConfig
}

func NewTranslatorService(client ChatClient, aiCfg config.AIConfig) *TranslatorService {
	return &TranslatorService{client: client, ai: aiCfg}
}

const translatorSystemPrompt = `You are an expert English-to-Hindi translator specialising in competitive examination papers.

Translate the given multiple-choice question into formal Hindi as used in official examination papers. Keep technical terms, proper nouns, abbreviations and numerals unchanged. Preserve the structure of the question exactly: every numbered statement, every option, the same order.

Respond ONLY with a JSON object in this schema:
{"question": "...", "options": ["...", "..."], "explanation": "..."}

The options array must contain exactly as many entries as the original, in the same order. Do not translate option letters or statement numbers.`

// Translate returns the Hindi rendering of one question. The model gets one
// structural reattempt when the option count does not match the original.
func (s *TranslatorService) Translate(ctx context.Context, stem string, options []string, explanation string) (*Translation, error) {
	modelName := s.ai.TranslationModel
	if modelName == "" {
		modelName = s.ai.Model
	}

	user := renderTranslationPayload(stem, options, explanation)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := s.client.Chat(ctx, modelName, translatorSystemPrompt, user)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		var tr Translation
		if err := DecodeJSON(raw, &tr); err != nil {
			lastErr = fmt.Errorf("malformed translation: %w", err)
			continue
		}

		if strings.TrimSpace(tr.Stem) == "" {
			lastErr = fmt.Errorf("translation returned an empty question")
			continue
		}
		if len(tr.Options) != len(options) {
			lastErr = fmt.Errorf("translation returned %d options, original has %d", len(tr.Options), len(options))
			logger.Log.Warn("translation structure mismatch, retrying",
				zap.Int("got", len(tr.Options)),
				zap.Int("want", len(options)),
				zap.Int("attempt", attempt),
			)
			continue
		}

		return &tr, nil
	}

	monitoring.TranslationsIncomplete.Inc()
	return nil, lastErr
}

func renderTranslationPayload(stem string, options []string, explanation string) string {
	var b strings.Builder
	b.WriteString("QUESTION:\n")
	b.WriteString(stem)
	b.WriteString("\n\nOPTIONS:\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "%s. %s\n", string(rune('A'+i)), opt)
	}
	if strings.TrimSpace(explanation) != "" {
		b.WriteString("\nEXPLANATION:\n")
		b.WriteString(explanation)
	}
	return b.String()
}
