package service

import (
	"context"
	"strings"

	"examgen_backend/internal/config"
	"examgen_backend/pkg/logger"

	"go.uber.org/zap"
)

// ResearcherService produces optional reference notes for topics the model
// is likely to hallucinate on (recent events, niche schemes, exact figures).
// It is gated by generation.enable_research and fails soft: any error means
// the run simply proceeds without reference material.
type ResearcherService struct {
	client ChatClient
	ai     config.AIConfig
	gen    config.GenerationConfig
}

func NewResearcherService(client ChatClient, aiCfg config.AIConfig, genCfg config.GenerationConfig) *ResearcherService {
	return &ResearcherService{client: client, ai: aiCfg, gen: genCfg}
}

const researchClassifierPrompt = `You decide whether an examination topic needs external reference material before questions can be written about it reliably.

Answer YES when the topic involves recent events, current affairs, specific government schemes, exact statistics, or anything a general model would likely state incorrectly from memory. Answer NO for stable, well-established subject matter.

Respond with exactly one word: YES or NO.`

const researchNotesPrompt = `You are a research assistant preparing factual reference notes for examination question writers.

Produce 5-10 concise bullet points of verified facts about the given topic: key dates, names, figures, provisions and relationships. State only facts you are confident about. No commentary, no questions, bullets only.`

// Research returns reference notes for the topic, or "" when research is
// disabled, unnecessary, or fails.
func (s *ResearcherService) Research(ctx context.Context, topic string) string {
	if !s.gen.EnableResearch || strings.TrimSpace(topic) == "" || s.client == nil {
		return ""
	}

	verdict, err := s.client.Chat(ctx, s.ai.Model, researchClassifierPrompt, "Topic: "+topic)
	if err != nil {
		logger.Log.Warn("research classification failed", zap.String("topic", topic), zap.Error(err))
		return ""
	}
	if !strings.Contains(strings.ToUpper(verdict), "YES") {
		return ""
	}

	notes, err := s.client.Chat(ctx, s.ai.Model, researchNotesPrompt, "Topic: "+topic)
	if err != nil {
		logger.Log.Warn("research notes failed", zap.String("topic", topic), zap.Error(err))
		return ""
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ""
	}

	logger.Log.Info("reference material prepared", zap.String("topic", topic), zap.Int("length", len(notes)))
	return notes
}
