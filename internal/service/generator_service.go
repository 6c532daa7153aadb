package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"
	"examgen_backend/pkg/logger"
	"examgen_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// GeneratorService obtains one validated question per generation request.
// Invalid or malformed responses are retried with accumulated correction
// hints, up to the configured attempt bound; exhausting the bound yields a
// GenerationFailure, which the orchestrator records without aborting the run.
type GeneratorService struct {
	client  ChatClient
	crafter *PromptCrafter
	ai      config.AIConfig
	gen     config.GenerationConfig
}

func NewGeneratorService(client ChatClient, crafter *PromptCrafter, aiCfg config.AIConfig, genCfg config.GenerationConfig) *GeneratorService {
	return &GeneratorService{
		client:  client,
		crafter: crafter,
		ai:      aiCfg,
		gen:     genCfg,
	}
}

// Generate runs the prompt/validate/retry loop for one request.
func (s *GeneratorService) Generate(ctx context.Context, req model.GenerationRequest) (*Candidate, error) {
	structure, ok := req.Pattern.Structure()
	if !ok {
		return nil, util.NewConfigurationError("request %d names unknown pattern %q", req.Number, req.Pattern)
	}

	system, err := s.crafter.CraftSystemPrompt(req)
	if err != nil {
		return nil, err
	}

	maxAttempts := s.gen.MaxAttempts
	if structure.Critical {
		maxAttempts = s.gen.MaxAttemptsCritical
	}

	var hints []string
	var reasons []string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answerKey := model.AnswerKeys[rand.Intn(len(model.AnswerKeys))]
		user := s.crafter.CraftUserPrompt(req.BlueprintText, answerKey, hints)

		raw, chatErr := s.client.Chat(ctx, s.ai.Model, system, user)
		if chatErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reasons = append(reasons, fmt.Sprintf("attempt %d: %v", attempt, chatErr))
			continue
		}

		var cand Candidate
		if decodeErr := DecodeJSON(raw, &cand); decodeErr != nil {
			reasons = append(reasons, fmt.Sprintf("attempt %d: malformed response: %v", attempt, decodeErr))
			hints = appendHint(hints, "Respond with a single valid JSON object in the required schema and nothing else.")
			continue
		}

		cand.Answer = strings.ToUpper(strings.TrimSpace(cand.Answer))

		violations := ValidateCandidate(&cand, req.Pattern)
		if len(violations) == 0 {
			monitoring.QuestionsGenerated.WithLabelValues(string(req.Pattern)).Inc()
			return &cand, nil
		}

		logger.Log.Warn("question rejected by validation",
			zap.Int("question", req.Number),
			zap.String("pattern", string(req.Pattern)),
			zap.Int("attempt", attempt),
			zap.Strings("violations", violations),
		)

		for _, v := range violations {
			reasons = append(reasons, fmt.Sprintf("attempt %d: %s", attempt, v))
			hints = appendHint(hints, v)
		}
	}

	monitoring.GenerationFailures.WithLabelValues(string(req.Pattern)).Inc()

	return nil, &util.GenerationFailure{
		Number:   req.Number,
		Pattern:  string(req.Pattern),
		Attempts: maxAttempts,
		Reasons:  reasons,
	}
}

// appendHint deduplicates correction hints so a repeated violation does not
// balloon the retry prompt.
func appendHint(hints []string, hint string) []string {
	for _, h := range hints {
		if h == hint {
			return hints
		}
	}
	return append(hints, hint)
}
