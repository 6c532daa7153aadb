package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"
	"examgen_backend/pkg/logger"

	"go.uber.org/zap"
)

// RunStore is the persistence surface the orchestrator needs for runs.
type RunStore interface {
	Create(run *model.Run) error
	Update(run *model.Run) error
	FindByID(id uint) (*model.Run, error)
	FindByCode(code string) (*model.Run, error)
	FindAllWithPagination(page, limit int) ([]model.Run, int64, error)
	Delete(id uint) error
}

// QuestionStore is the persistence surface for finalized questions.
type QuestionStore interface {
	Append(q *model.Question) error
	Update(q *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByRunID(runID uint) ([]model.Question, error)
	MaxNumber(runID uint) (int, error)
	RecentBlueprints(limit int) ([]string, error)
}

// TemplateStore is the persistence surface for reusable blueprints.
type TemplateStore interface {
	FindAll() ([]model.BlueprintTemplate, error)
	FindDefault() (*model.BlueprintTemplate, error)
}

// RunService orchestrates the full pipeline: plan, generate, translate,
// persist. A run is executed by a single background goroutine; individual
// question failures are recorded and never abort the run.
type RunService struct {
	Runs       RunStore
	Questions  QuestionStore
	Templates  TemplateStore
	Planner    *PlannerService
	Generator  *GeneratorService
	Translator *TranslatorService
	Researcher *ResearcherService
	Gen        config.GenerationConfig
}

func NewRunService(runs RunStore, questions QuestionStore, templates TemplateStore, planner *PlannerService, generator *GeneratorService, translator *TranslatorService, researcher *ResearcherService, genCfg config.GenerationConfig) *RunService {
	return &RunService{
		Runs:       runs,
		Questions:  questions,
		Templates:  templates,
		Planner:    planner,
		Generator:  generator,
		Translator: translator,
		Researcher: researcher,
		Gen:        genCfg,
	}
}

// CreateRunInput is the validated payload for starting a run.
type CreateRunInput struct {
	Name       string
	Subject    string
	Topic      string
	SourceText string
	Blueprint  model.Blueprint
}

// StartRun validates the blueprint, persists the run in pending state, and
// kicks off execution in the background. A request without quotas falls back
// to the stored default template.
func (s *RunService) StartRun(in CreateRunInput) (*model.Run, error) {
	if len(in.Blueprint.Quotas) == 0 && s.Templates != nil {
		tmpl, err := s.Templates.FindDefault()
		if err != nil {
			return nil, util.NewConfigurationError("no blueprint given and no default template available")
		}
		subject := in.Blueprint.Subject
		if err := json.Unmarshal([]byte(tmpl.Spec), &in.Blueprint); err != nil {
			return nil, fmt.Errorf("default template %q is unreadable: %w", tmpl.Name, err)
		}
		if subject != "" {
			in.Blueprint.Subject = subject
		}
	}

	requests, err := ExpandBlueprint(in.Blueprint)
	if err != nil {
		return nil, err
	}

	rawBlueprint, err := json.Marshal(in.Blueprint)
	if err != nil {
		return nil, err
	}

	subject := in.Subject
	if subject == "" {
		subject = in.Blueprint.Subject
	}

	run := &model.Run{
		Code:       model.GenerateUUID(),
		Name:       in.Name,
		Subject:    subject,
		Topic:      in.Topic,
		SourceText: in.SourceText,
		Blueprint:  rawBlueprint,
		Status:     model.RunPending,
		Requested:  len(requests),
	}
	if err := s.Runs.Create(run); err != nil {
		return nil, err
	}

	go s.Execute(context.Background(), run.ID)

	return run, nil
}

// Execute drives one run from pending to completed or failed. Exported so a
// stalled pending run can be resumed; numbering continues after any question
// already stored for the run.
func (s *RunService) Execute(ctx context.Context, runID uint) {
	run, err := s.Runs.FindByID(runID)
	if err != nil {
		logger.Log.Error("run vanished before execution", zap.Uint("run_id", runID), zap.Error(err))
		return
	}

	run.Status = model.RunRunning
	if err := s.Runs.Update(run); err != nil {
		logger.Log.Error("failed to mark run running", zap.String("run", run.Code), zap.Error(err))
		return
	}

	var blueprint model.Blueprint
	if err := json.Unmarshal(run.Blueprint, &blueprint); err != nil {
		s.failRun(run, "stored blueprint is unreadable: "+err.Error())
		return
	}

	startNumber, err := s.Questions.MaxNumber(run.ID)
	if err != nil {
		logger.Log.Warn("could not read existing numbering, starting at 1", zap.String("run", run.Code), zap.Error(err))
		startNumber = 0
	}

	history, err := s.Questions.RecentBlueprints(s.Gen.HistoryLimit)
	if err != nil {
		logger.Log.Warn("recent blueprint history unavailable", zap.Error(err))
		history = nil
	}

	reference := ""
	if s.Researcher != nil {
		reference = s.Researcher.Research(ctx, run.Topic)
	}

	requests, err := s.Planner.Plan(ctx, PlanInput{
		Blueprint:   blueprint,
		Topic:       run.Topic,
		SourceText:  run.SourceText,
		StartNumber: startNumber + 1,
		History:     history,
		Reference:   reference,
	})
	if err != nil {
		s.failRun(run, err.Error())
		return
	}

	logger.Log.Info("run started",
		zap.String("run", run.Code),
		zap.String("subject", run.Subject),
		zap.Int("requested", len(requests)),
	)

	var failures []*util.GenerationFailure
	for _, req := range requests {
		cand, err := s.Generator.Generate(ctx, req)
		if err != nil {
			var genFail *util.GenerationFailure
			if errors.As(err, &genFail) {
				failures = append(failures, genFail)
				run.Failed++
				if err := s.Runs.Update(run); err != nil {
					logger.Log.Error("failed to record run progress", zap.String("run", run.Code), zap.Error(err))
				}
				logger.Log.Warn("question abandoned",
					zap.String("run", run.Code),
					zap.Int("question", req.Number),
					zap.String("pattern", string(req.Pattern)),
				)
				continue
			}
			s.failRun(run, err.Error())
			return
		}

		q, err := s.finalizeQuestion(ctx, run, req, cand)
		if err != nil {
			s.failRun(run, err.Error())
			return
		}

		run.Generated++
		if !q.TranslationComplete {
			run.Untranslated++
		}
		if err := s.Runs.Update(run); err != nil {
			logger.Log.Error("failed to record run progress", zap.String("run", run.Code), zap.Error(err))
		}
	}

	if len(failures) > 0 {
		if raw, err := json.Marshal(failures); err == nil {
			run.FailureLog = raw
		}
	}
	run.Status = model.RunCompleted
	if err := s.Runs.Update(run); err != nil {
		logger.Log.Error("failed to mark run completed", zap.String("run", run.Code), zap.Error(err))
		return
	}

	logger.Log.Info("run completed",
		zap.String("run", run.Code),
		zap.Int("generated", run.Generated),
		zap.Int("failed", run.Failed),
		zap.Int("untranslated", run.Untranslated),
	)
}

// finalizeQuestion translates the approved candidate and persists it.
// Translation failure is soft: the question is stored in English only.
func (s *RunService) finalizeQuestion(ctx context.Context, run *model.Run, req model.GenerationRequest, cand *Candidate) (*model.Question, error) {
	q := &model.Question{
		RunID:       run.ID,
		Number:      req.Number,
		Pattern:     req.Pattern,
		Subject:     req.Subject,
		Topic:       req.Topic,
		Blueprint:   req.BlueprintText,
		Stem:        cand.Stem,
		Answer:      cand.Answer,
		Explanation: cand.Explanation,
	}
	if err := q.SetOptions(cand.Options); err != nil {
		return nil, err
	}

	s.applyTranslation(ctx, q)

	if err := s.Questions.Append(q); err != nil {
		return nil, err
	}
	return q, nil
}

// applyTranslation fills the Hindi fields in place when translation succeeds.
func (s *RunService) applyTranslation(ctx context.Context, q *model.Question) {
	if s.Translator == nil {
		return
	}

	tr, err := s.Translator.Translate(ctx, q.Stem, q.OptionList(), q.Explanation)
	if err != nil {
		logger.Log.Warn("translation incomplete, keeping English only",
			zap.Int("question", q.Number),
			zap.Error(err),
		)
		q.StemHindi = ""
		q.OptionsHindi = nil
		q.ExplanationHindi = ""
		q.TranslationComplete = false
		return
	}

	q.StemHindi = tr.Stem
	q.SetHindiOptions(tr.Options)
	q.ExplanationHindi = tr.Explanation
	q.TranslationComplete = true
}

func (s *RunService) failRun(run *model.Run, reason string) {
	logger.Log.Error("run failed", zap.String("run", run.Code), zap.String("reason", reason))
	run.Status = model.RunFailed
	if raw, err := json.Marshal([]map[string]string{{"reason": reason}}); err == nil {
		run.FailureLog = raw
	}
	if err := s.Runs.Update(run); err != nil {
		logger.Log.Error("failed to persist failed status", zap.String("run", run.Code), zap.Error(err))
	}
}

// ListTemplates returns the stored reusable blueprints.
func (s *RunService) ListTemplates() ([]model.BlueprintTemplate, error) {
	if s.Templates == nil {
		return nil, nil
	}
	return s.Templates.FindAll()
}

// GetRun returns a run by its public code.
func (s *RunService) GetRun(code string) (*model.Run, error) {
	return s.Runs.FindByCode(code)
}

// ListRuns returns a page of runs, newest first.
func (s *RunService) ListRuns(page, limit int) ([]model.Run, int64, error) {
	return s.Runs.FindAllWithPagination(page, limit)
}

// DeleteRun removes a run and its questions.
func (s *RunService) DeleteRun(code string) error {
	run, err := s.Runs.FindByCode(code)
	if err != nil {
		return err
	}
	return s.Runs.Delete(run.ID)
}

// ListQuestions returns all stored questions of a run in paper order.
func (s *RunService) ListQuestions(code string) ([]model.Question, error) {
	run, err := s.Runs.FindByCode(code)
	if err != nil {
		return nil, err
	}
	return s.Questions.FindByRunID(run.ID)
}

// RegenerateQuestion replaces one stored question in place, re-running the
// full generate-and-translate pipeline with the question's original blueprint.
func (s *RunService) RegenerateQuestion(ctx context.Context, questionID uint) (*model.Question, error) {
	q, err := s.Questions.FindByID(questionID)
	if err != nil {
		return nil, err
	}

	req := model.GenerationRequest{
		Number:        q.Number,
		Pattern:       q.Pattern,
		Subject:       q.Subject,
		Topic:         q.Topic,
		BlueprintText: q.Blueprint,
	}
	if strings.TrimSpace(req.BlueprintText) == "" {
		req.BlueprintText = BlueprintText(req)
	}

	cand, err := s.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	q.Stem = cand.Stem
	q.Answer = cand.Answer
	q.Explanation = cand.Explanation
	if err := q.SetOptions(cand.Options); err != nil {
		return nil, err
	}

	wasComplete := q.TranslationComplete
	s.applyTranslation(ctx, q)

	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}
	switch {
	case wasComplete && !q.TranslationComplete:
		s.syncUntranslated(q.RunID, 1)
	case !wasComplete && q.TranslationComplete:
		s.syncUntranslated(q.RunID, -1)
	}
	return q, nil
}

// RetranslateQuestion retries the Hindi pass for one question without
// touching the English content.
func (s *RunService) RetranslateQuestion(ctx context.Context, questionID uint) (*model.Question, error) {
	q, err := s.Questions.FindByID(questionID)
	if err != nil {
		return nil, err
	}

	tr, err := s.Translator.Translate(ctx, q.Stem, q.OptionList(), q.Explanation)
	if err != nil {
		return nil, err
	}

	wasComplete := q.TranslationComplete
	q.StemHindi = tr.Stem
	q.SetHindiOptions(tr.Options)
	q.ExplanationHindi = tr.Explanation
	q.TranslationComplete = true

	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}
	if !wasComplete {
		s.syncUntranslated(q.RunID, -1)
	}
	return q, nil
}

// syncUntranslated reflects a question's translation state change in the
// owning run's summary counter.
func (s *RunService) syncUntranslated(runID uint, delta int) {
	run, err := s.Runs.FindByID(runID)
	if err != nil {
		logger.Log.Warn("could not load run for translation counter", zap.Uint("run_id", runID), zap.Error(err))
		return
	}
	run.Untranslated += delta
	if run.Untranslated < 0 {
		run.Untranslated = 0
	}
	if err := s.Runs.Update(run); err != nil {
		logger.Log.Warn("could not update translation counter", zap.String("run", run.Code), zap.Error(err))
	}
}
