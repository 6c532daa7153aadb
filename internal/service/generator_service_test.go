package service

import (
	"context"
	"errors"
	"testing"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenConfig() config.GenerationConfig {
	return config.GenerationConfig{MaxAttempts: 3, MaxAttemptsCritical: 5}
}

const validSingleCorrectJSON = `{
	"question": "Which one of the following rivers flows through a rift valley?",
	"options": ["Godavari", "Narmada", "Krishna", "Mahanadi"],
	"answer": "b",
	"explanation": "The Narmada occupies a rift between the Vindhya and Satpura ranges."
}`

func singleCorrectRequest() model.GenerationRequest {
	return model.GenerationRequest{
		Number:        1,
		Pattern:       model.PatternSingleCorrect,
		Subject:       "geography",
		BlueprintText: "Subject: geography\nFormat: Standard Single-Correct",
	}
}

func TestGenerateAcceptsValidCandidate(t *testing.T) {
	chat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	cand, err := gen.Generate(context.Background(), singleCorrectRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, "B", cand.Answer)
	assert.Len(t, cand.Options, 4)
}

func TestGenerateRetriesWithAccumulatedHints(t *testing.T) {
	bad := `{"question": "Which river?", "options": ["Godavari", "Narmada", "Krishna"], "answer": "A", "explanation": "x"}`
	chat := &scriptedChat{replies: []string{bad, validSingleCorrectJSON}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	cand, err := gen.Generate(context.Background(), singleCorrectRequest())
	require.NoError(t, err)
	require.NotNil(t, cand)

	require.Equal(t, 2, chat.calls)
	assert.NotContains(t, chat.users[0], "CORRECTIONS REQUIRED")
	assert.Contains(t, chat.users[1], "CORRECTIONS REQUIRED")
	assert.Contains(t, chat.users[1], "expected 4 options but got 3")
}

func TestGenerateExhaustsAttemptsAndReportsFailure(t *testing.T) {
	chat := &scriptedChat{replies: []string{"not json at all"}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	cand, err := gen.Generate(context.Background(), singleCorrectRequest())
	require.Nil(t, cand)
	require.Error(t, err)

	var failure *util.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 1, failure.Number)
	assert.Equal(t, string(model.PatternSingleCorrect), failure.Pattern)
	assert.Equal(t, 3, failure.Attempts)
	assert.Len(t, failure.Reasons, 3)
	assert.Equal(t, 3, chat.calls)
}

func TestGenerateUsesCriticalBudgetForCriticalPatterns(t *testing.T) {
	chat := &scriptedChat{replies: []string{"garbage"}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	req := model.GenerationRequest{
		Number:        2,
		Pattern:       model.PatternAssertionReason,
		BlueprintText: "Format: Assertion-Reason",
	}
	_, err := gen.Generate(context.Background(), req)

	var failure *util.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 5, failure.Attempts)
	assert.Equal(t, 5, chat.calls)
}

func TestGenerateTransportErrorsCountAsAttempts(t *testing.T) {
	boom := errors.New("connection reset")
	chat := &scriptedChat{errs: []error{boom, boom, boom}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	_, err := gen.Generate(context.Background(), singleCorrectRequest())

	var failure *util.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, chat.calls)
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chat := chatFunc(func(ctx context.Context, model, system, user string) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	_, err := gen.Generate(ctx, singleCorrectRequest())
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateUnknownPatternIsConfigurationError(t *testing.T) {
	gen := NewGeneratorService(&scriptedChat{}, NewPromptCrafter(), config.AIConfig{}, testGenConfig())

	_, err := gen.Generate(context.Background(), model.GenerationRequest{Number: 1, Pattern: "essay"})
	require.Error(t, err)
	assert.True(t, util.IsConfigurationError(err))
}

func TestGenerateParsesFencedJSON(t *testing.T) {
	fenced := "```json\n" + validSingleCorrectJSON + "\n```"
	chat := &scriptedChat{replies: []string{fenced}}
	gen := NewGeneratorService(chat, NewPromptCrafter(), config.AIConfig{Model: "test-model"}, testGenConfig())

	cand, err := gen.Generate(context.Background(), singleCorrectRequest())
	require.NoError(t, err)
	assert.Equal(t, "B", cand.Answer)
}
