package service

import (
	"context"
	"fmt"
	"strings"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"
	"examgen_backend/pkg/logger"

	"go.uber.org/zap"
)

// PlannerService turns a blueprint into the ordered list of generation
// requests for a run. The count/ordering policy is deterministic; the LLM is
// only used, optionally, to draft a focus note per request.
type PlannerService struct {
	client ChatClient
	ai     config.AIConfig
	gen    config.GenerationConfig
}

func NewPlannerService(client ChatClient, aiCfg config.AIConfig, genCfg config.GenerationConfig) *PlannerService {
	return &PlannerService{client: client, ai: aiCfg, gen: genCfg}
}

// PlanInput carries everything one planning pass needs. History holds recent
// blueprints from earlier runs, used to steer the drafts away from
// repetition.
type PlanInput struct {
	Blueprint   model.Blueprint
	Topic       string
	SourceText  string
	StartNumber int
	History     []string
	Reference   string // researched reference material, may be empty
}

// ExpandBlueprint applies the quota policy: quotas are honored exactly when
// they sum to the total; otherwise proportional rounding is applied with the
// remainder assigned to the largest-quota row (ties broken by declaration
// order). Requests come out in quota declaration order.
func ExpandBlueprint(bp model.Blueprint) ([]model.GenerationRequest, error) {
	if bp.Total <= 0 {
		return nil, util.NewConfigurationError("blueprint total must be positive, got %d", bp.Total)
	}
	if len(bp.Quotas) == 0 {
		return nil, util.NewConfigurationError("blueprint has no pattern quotas")
	}

	sum := 0
	for i, q := range bp.Quotas {
		if !q.Pattern.Valid() {
			return nil, util.NewConfigurationError("quota %d names unknown pattern %q", i, q.Pattern)
		}
		if q.Count < 0 {
			return nil, util.NewConfigurationError("quota for pattern %q is negative", q.Pattern)
		}
		sum += q.Count
	}
	if sum == 0 {
		return nil, util.NewConfigurationError("pattern quotas sum to zero")
	}

	counts := make([]int, len(bp.Quotas))
	if sum == bp.Total {
		for i, q := range bp.Quotas {
			counts[i] = q.Count
		}
	} else {
		assigned := 0
		for i, q := range bp.Quotas {
			counts[i] = bp.Total * q.Count / sum
			assigned += counts[i]
		}
		// Remainder goes to the largest quota; first declared wins ties.
		largest := 0
		for i, q := range bp.Quotas {
			if q.Count > bp.Quotas[largest].Count {
				largest = i
			}
		}
		counts[largest] += bp.Total - assigned
	}

	requests := make([]model.GenerationRequest, 0, bp.Total)
	for i, q := range bp.Quotas {
		for n := 0; n < counts[i]; n++ {
			requests = append(requests, model.GenerationRequest{
				Pattern:    q.Pattern,
				Subject:    bp.Subject,
				Topic:      q.Topic,
				Difficulty: q.Difficulty,
				Cognitive:  q.Cognitive,
			})
		}
	}

	return requests, nil
}

// Plan expands the blueprint and fills each request with its number and
// blueprint text. When a topic or source text is present and a chat client is
// wired, the per-request focus notes are drafted by the model; any drafting
// failure falls back to the deterministic rendering.
func (s *PlannerService) Plan(ctx context.Context, in PlanInput) ([]model.GenerationRequest, error) {
	requests, err := ExpandBlueprint(in.Blueprint)
	if err != nil {
		return nil, err
	}

	start := in.StartNumber
	if start <= 0 {
		start = 1
	}

	for i := range requests {
		requests[i].Number = start + i
		if requests[i].Topic == "" {
			requests[i].Topic = in.Topic
		}
		requests[i].BlueprintText = BlueprintText(requests[i])
	}

	if s.client != nil && (in.Topic != "" || in.SourceText != "") {
		if drafts, err := s.draftBlueprints(ctx, in, requests); err != nil {
			logger.Log.Warn("blueprint drafting failed, using deterministic blueprints", zap.Error(err))
		} else {
			for i := range requests {
				requests[i].BlueprintText = drafts[i]
			}
		}
	}

	if in.Reference != "" {
		for i := range requests {
			requests[i].BlueprintText += "\n\n" + referenceMarker + " ---\n" + in.Reference
		}
	}

	return requests, nil
}

// draftBlueprints asks the model for one focus note per request. The reply
// must be a JSON array with exactly one string per request, in order.
func (s *PlannerService) draftBlueprints(ctx context.Context, in PlanInput, requests []model.GenerationRequest) ([]string, error) {
	system := s.draftSystemPrompt(in)
	user := s.draftUserPrompt(in, requests)

	raw, err := s.client.Chat(ctx, s.ai.Model, system, user)
	if err != nil {
		return nil, err
	}

	var drafts []string
	if err := DecodeJSON(raw, &drafts); err != nil {
		return nil, err
	}
	if len(drafts) != len(requests) {
		return nil, fmt.Errorf("expected %d blueprint drafts, got %d", len(requests), len(drafts))
	}
	for i, d := range drafts {
		if strings.TrimSpace(d) == "" {
			return nil, fmt.Errorf("blueprint draft %d is empty", i+1)
		}
	}

	return drafts, nil
}

func (s *PlannerService) draftSystemPrompt(in PlanInput) string {
	var b strings.Builder

	b.WriteString(`You are an expert question paper designer for the Civil Services Preliminary Examination.
Your task is to produce one question plan (a blueprint, NOT the question text) per row of the requirements table.
Each plan is a short multi-line string naming Subject, Topic, Subtopic, Format, Difficulty, Cognitive Skill and a one-line focus note.
Rules:
- Produce EXACTLY the requested number of plans, in table order. This is non-negotiable.
- Every plan must stay on the user-provided topic and, when present, on the provided source context.
- Do not try to cover everything in one plan; pick one angle per plan.
- Vary subtopics and angles across plans.
`)

	history := in.History
	if limit := s.gen.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	if len(history) > 0 {
		b.WriteString("\n### PREVIOUSLY GENERATED BLUEPRINTS [avoid repeating these]\n```\n")
		b.WriteString(strings.Join(history, "\n---\n"))
		b.WriteString("\n```\n")
	}

	b.WriteString("\n## Output Format\nReturn a JSON array of strings, one complete plan per string, and nothing else.\n")

	return b.String()
}

func (s *PlannerService) draftUserPrompt(in PlanInput, requests []model.GenerationRequest) string {
	var b strings.Builder

	b.WriteString("# USER INPUTS\n\n")
	if in.SourceText != "" {
		b.WriteString("### Source Context:\n```\n")
		b.WriteString(in.SourceText)
		b.WriteString("\n```\n\n")
	}
	if in.Topic != "" {
		fmt.Fprintf(&b, "### Topic:\n%s\n\n", in.Topic)
	}

	b.WriteString("### Detailed Question Requirements Table:\n")
	for i, req := range requests {
		label := string(req.Pattern)
		if structure, ok := req.Pattern.Structure(); ok {
			label = structure.Label
		}
		topic := req.Topic
		if topic == "" {
			topic = "use the main topic/context"
		}
		fmt.Fprintf(&b, "%d. One plan with attributes: [Topic: %s, Format: %s, Difficulty: %s, Cognitive: %s]\n",
			i+1, topic, label, orDefault(req.Difficulty, "Moderate"), orDefault(req.Cognitive, "Comprehension"))
	}
	fmt.Fprintf(&b, "\n**Total plans to produce: %d**\n\nNow generate the question plans.\n", len(requests))

	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
