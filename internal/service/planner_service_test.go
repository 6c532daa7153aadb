package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandBlueprintExactQuotas(t *testing.T) {
	bp := model.Blueprint{
		Total:   3,
		Subject: "polity",
		Quotas: []model.PatternQuota{
			{Pattern: model.PatternSingleCorrect, Count: 2},
			{Pattern: model.PatternAssertionReason, Count: 1},
		},
	}

	requests, err := ExpandBlueprint(bp)
	require.NoError(t, err)
	require.Len(t, requests, 3)

	assert.Equal(t, model.PatternSingleCorrect, requests[0].Pattern)
	assert.Equal(t, model.PatternSingleCorrect, requests[1].Pattern)
	assert.Equal(t, model.PatternAssertionReason, requests[2].Pattern)
	assert.Equal(t, "polity", requests[0].Subject)
}

func TestExpandBlueprintProportionalRounding(t *testing.T) {
	bp := model.Blueprint{
		Total: 10,
		Quotas: []model.PatternQuota{
			{Pattern: model.PatternSingleCorrect, Count: 2},
			{Pattern: model.PatternMultiStatement2, Count: 1},
		},
	}

	requests, err := ExpandBlueprint(bp)
	require.NoError(t, err)
	require.Len(t, requests, 10)

	counts := map[model.Pattern]int{}
	for _, r := range requests {
		counts[r.Pattern]++
	}
	// floor(10*2/3)=6 and floor(10*1/3)=3; the remainder lands on the
	// largest quota.
	assert.Equal(t, 7, counts[model.PatternSingleCorrect])
	assert.Equal(t, 3, counts[model.PatternMultiStatement2])
}

func TestExpandBlueprintRemainderTieGoesToFirstDeclared(t *testing.T) {
	bp := model.Blueprint{
		Total: 3,
		Quotas: []model.PatternQuota{
			{Pattern: model.PatternSingleCorrect, Count: 1},
			{Pattern: model.PatternSequencing, Count: 1},
		},
	}

	requests, err := ExpandBlueprint(bp)
	require.NoError(t, err)
	require.Len(t, requests, 3)

	counts := map[model.Pattern]int{}
	for _, r := range requests {
		counts[r.Pattern]++
	}
	assert.Equal(t, 2, counts[model.PatternSingleCorrect])
	assert.Equal(t, 1, counts[model.PatternSequencing])
}

func TestExpandBlueprintRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		bp   model.Blueprint
	}{
		{"zero total", model.Blueprint{Total: 0, Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}}}},
		{"no quotas", model.Blueprint{Total: 5}},
		{"unknown pattern", model.Blueprint{Total: 5, Quotas: []model.PatternQuota{{Pattern: "true_false", Count: 5}}}},
		{"negative count", model.Blueprint{Total: 5, Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: -1}}}},
		{"zero-sum quotas", model.Blueprint{Total: 5, Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 0}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExpandBlueprint(tc.bp)
			require.Error(t, err)
			assert.True(t, util.IsConfigurationError(err))
		})
	}
}

func TestPlanNumbersRequestsSequentially(t *testing.T) {
	planner := NewPlannerService(nil, config.AIConfig{}, config.GenerationConfig{})

	requests, err := planner.Plan(context.Background(), PlanInput{
		Blueprint: model.Blueprint{
			Total:  2,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
		},
		Topic:       "fundamental rights",
		StartNumber: 5,
	})
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, 5, requests[0].Number)
	assert.Equal(t, 6, requests[1].Number)
	assert.Equal(t, "fundamental rights", requests[0].Topic)
	assert.NotEmpty(t, requests[0].BlueprintText)
}

func TestPlanFallsBackWhenDraftingFails(t *testing.T) {
	chat := &scriptedChat{errs: []error{errors.New("upstream down")}}
	planner := NewPlannerService(chat, config.AIConfig{Model: "test-model"}, config.GenerationConfig{})

	requests, err := planner.Plan(context.Background(), PlanInput{
		Blueprint: model.Blueprint{
			Total:  1,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
		},
		Topic: "monetary policy",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 1, chat.calls)
	assert.Contains(t, requests[0].BlueprintText, "monetary policy")
}

func TestPlanUsesDraftedBlueprints(t *testing.T) {
	chat := &scriptedChat{replies: []string{`["Subject: Economy\nFocus: repo rate transmission", "Subject: Economy\nFocus: open market operations"]`}}
	planner := NewPlannerService(chat, config.AIConfig{Model: "test-model"}, config.GenerationConfig{HistoryLimit: 10})

	requests, err := planner.Plan(context.Background(), PlanInput{
		Blueprint: model.Blueprint{
			Total:  2,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
		},
		Topic:   "monetary policy",
		History: []string{"Subject: Economy\nFocus: inflation targeting"},
	})
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Contains(t, requests[0].BlueprintText, "repo rate transmission")
	assert.Contains(t, requests[1].BlueprintText, "open market operations")
	assert.Contains(t, chat.systems[0], "inflation targeting")
}

func TestPlanRejectsDraftCountMismatch(t *testing.T) {
	chat := &scriptedChat{replies: []string{`["only one draft"]`}}
	planner := NewPlannerService(chat, config.AIConfig{}, config.GenerationConfig{})

	requests, err := planner.Plan(context.Background(), PlanInput{
		Blueprint: model.Blueprint{
			Total:  2,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
		},
		Topic: "anything",
	})
	require.NoError(t, err)

	// Falls back to the deterministic rendering for every request.
	for _, r := range requests {
		assert.NotContains(t, r.BlueprintText, "only one draft")
		assert.NotEmpty(t, r.BlueprintText)
	}
}

func TestPlanAppendsReferenceMaterial(t *testing.T) {
	planner := NewPlannerService(nil, config.AIConfig{}, config.GenerationConfig{})

	requests, err := planner.Plan(context.Background(), PlanInput{
		Blueprint: model.Blueprint{
			Total:  1,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
		},
		Reference: "- PM-KISAN provides Rs 6000 per year",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)

	assert.True(t, strings.Contains(requests[0].BlueprintText, referenceMarker))
	assert.Contains(t, requests[0].BlueprintText, "PM-KISAN")
}
