package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errStoreUnavailable = errors.New("store unavailable")

type fakeRunStore struct {
	mu          sync.Mutex
	runs        map[uint]model.Run
	nextID      uint
	updateCalls int
	failUpdates map[int]bool
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: map[uint]model.Run{}}
}

func (f *fakeRunStore) Create(run *model.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	run.ID = f.nextID
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunStore) Update(run *model.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdates[f.updateCalls] {
		return errStoreUnavailable
	}
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunStore) FindByID(id uint) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &run, nil
}

func (f *fakeRunStore) FindByCode(code string) (*model.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.Code == code {
			r := run
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunStore) FindAllWithPagination(page, limit int) ([]model.Run, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var runs []model.Run
	for _, run := range f.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	return runs, int64(len(runs)), nil
}

func (f *fakeRunStore) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.runs, id)
	return nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions []model.Question
	nextID    uint
}

func (f *fakeQuestionStore) Append(q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q.ID = f.nextID
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestionStore) Update(q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.questions {
		if f.questions[i].ID == q.ID {
			f.questions[i] = *q
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeQuestionStore) FindByID(id uint) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.questions {
		if f.questions[i].ID == id {
			q := f.questions[i]
			return &q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionStore) FindByRunID(runID uint) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, q := range f.questions {
		if q.RunID == runID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeQuestionStore) MaxNumber(runID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, q := range f.questions {
		if q.RunID == runID && q.Number > max {
			max = q.Number
		}
	}
	return max, nil
}

func (f *fakeQuestionStore) RecentBlueprints(limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for i := len(f.questions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.questions[i].Blueprint)
	}
	return out, nil
}

type fakeTemplateStore struct {
	templates []model.BlueprintTemplate
}

func (f *fakeTemplateStore) FindAll() ([]model.BlueprintTemplate, error) {
	return f.templates, nil
}

func (f *fakeTemplateStore) FindDefault() (*model.BlueprintTemplate, error) {
	for i := range f.templates {
		if f.templates[i].IsDefault {
			return &f.templates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestRunService(genChat, trChat ChatClient) (*RunService, *fakeRunStore, *fakeQuestionStore) {
	runs := newFakeRunStore()
	questions := &fakeQuestionStore{}

	genCfg := testGenConfig()
	genCfg.HistoryLimit = 50
	aiCfg := config.AIConfig{Model: "test-model"}

	var translator *TranslatorService
	if trChat != nil {
		translator = NewTranslatorService(trChat, aiCfg)
	}

	svc := NewRunService(
		runs,
		questions,
		nil,
		NewPlannerService(nil, aiCfg, genCfg),
		NewGeneratorService(genChat, NewPromptCrafter(), aiCfg, genCfg),
		translator,
		nil,
		genCfg,
	)
	return svc, runs, questions
}

func seedRun(t *testing.T, runs *fakeRunStore, bp model.Blueprint) *model.Run {
	t.Helper()
	raw, err := json.Marshal(bp)
	require.NoError(t, err)

	run := &model.Run{
		Code:      model.GenerateUUID(),
		Name:      "test paper",
		Subject:   bp.Subject,
		Blueprint: raw,
		Status:    model.RunPending,
		Requested: bp.Total,
	}
	require.NoError(t, runs.Create(run))
	return run
}

func TestExecuteCompletesRunWithTranslations(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	trChat := &scriptedChat{replies: []string{validTranslationJSON}}
	svc, runs, questions := newTestRunService(genChat, trChat)

	run := seedRun(t, runs, model.Blueprint{
		Total:   2,
		Subject: "geography",
		Quotas:  []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
	})

	svc.Execute(context.Background(), run.ID)

	got, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, 2, got.Generated)
	assert.Equal(t, 0, got.Failed)
	assert.Equal(t, 0, got.Untranslated)
	assert.Empty(t, got.FailureLog)

	stored, err := questions.FindByRunID(run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 1, stored[0].Number)
	assert.Equal(t, 2, stored[1].Number)
	assert.True(t, stored[0].TranslationComplete)
	assert.NotEmpty(t, stored[0].StemHindi)
}

func TestExecuteRecordsFailuresAndContinues(t *testing.T) {
	// Question 1 burns all three attempts on garbage; question 2 succeeds.
	genChat := &scriptedChat{replies: []string{"x", "x", "x", validSingleCorrectJSON}}
	svc, runs, questions := newTestRunService(genChat, nil)

	run := seedRun(t, runs, model.Blueprint{
		Total:  2,
		Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
	})

	svc.Execute(context.Background(), run.ID)

	got, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, 1, got.Generated)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Untranslated)

	var failures []util.GenerationFailure
	require.NoError(t, json.Unmarshal(got.FailureLog, &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Number)
	assert.Equal(t, 3, failures[0].Attempts)

	stored, err := questions.FindByRunID(run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].TranslationComplete)
}

func TestExecuteFailsRunOnBrokenBlueprint(t *testing.T) {
	svc, runs, _ := newTestRunService(&scriptedChat{}, nil)

	raw, _ := json.Marshal(model.Blueprint{
		Total:  4,
		Quotas: []model.PatternQuota{{Pattern: "essay", Count: 4}},
	})
	run := &model.Run{Code: model.GenerateUUID(), Name: "broken", Blueprint: raw, Status: model.RunPending}
	require.NoError(t, runs.Create(run))

	svc.Execute(context.Background(), run.ID)

	got, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, got.Status)
	assert.NotEmpty(t, got.FailureLog)
}

func TestExecuteContinuesNumberingAfterExistingQuestions(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	svc, runs, questions := newTestRunService(genChat, nil)

	run := seedRun(t, runs, model.Blueprint{
		Total:  1,
		Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
	})
	require.NoError(t, questions.Append(&model.Question{RunID: run.ID, Number: 3, Pattern: model.PatternSingleCorrect}))

	svc.Execute(context.Background(), run.ID)

	stored, err := questions.FindByRunID(run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 4, stored[1].Number)
}

func TestStartRunRejectsInvalidBlueprint(t *testing.T) {
	svc, runs, _ := newTestRunService(&scriptedChat{}, nil)

	_, err := svc.StartRun(CreateRunInput{
		Name:      "bad",
		Blueprint: model.Blueprint{Total: 0},
	})
	require.Error(t, err)
	assert.True(t, util.IsConfigurationError(err))

	all, _, _ := runs.FindAllWithPagination(1, 10)
	assert.Empty(t, all)
}

func TestStartRunPersistsPendingRun(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	svc, _, _ := newTestRunService(genChat, nil)

	run, err := svc.StartRun(CreateRunInput{
		Name:    "my paper",
		Subject: "polity",
		Blueprint: model.Blueprint{
			Total:  1,
			Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.Code)
	assert.Equal(t, 1, run.Requested)
	assert.Equal(t, "polity", run.Subject)
}

func TestStartRunFallsBackToDefaultTemplate(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	svc, _, _ := newTestRunService(genChat, nil)

	spec, err := json.Marshal(model.Blueprint{
		Total:  2,
		Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 2}},
	})
	require.NoError(t, err)
	svc.Templates = &fakeTemplateStore{templates: []model.BlueprintTemplate{
		{Name: "standard-paper", Spec: string(spec), IsDefault: true},
	}}

	run, err := svc.StartRun(CreateRunInput{Name: "templated"})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Requested)
}

func TestRegenerateQuestionReplacesInPlace(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	trChat := &scriptedChat{replies: []string{validTranslationJSON}}
	svc, _, questions := newTestRunService(genChat, trChat)

	seed := &model.Question{
		RunID:     1,
		Number:    2,
		Pattern:   model.PatternSingleCorrect,
		Subject:   "geography",
		Blueprint: "Subject: geography\nFormat: Standard Single-Correct",
		Stem:      "old stem",
		Answer:    "D",
	}
	require.NoError(t, seed.SetOptions([]string{"w", "x", "y", "z"}))
	require.NoError(t, questions.Append(seed))

	got, err := svc.RegenerateQuestion(context.Background(), seed.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Number)
	assert.NotEqual(t, "old stem", got.Stem)
	assert.Equal(t, "B", got.Answer)
	assert.True(t, got.TranslationComplete)

	stored, err := questions.FindByID(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Stem, stored.Stem)
}

func TestRetranslateQuestionFillsHindiFields(t *testing.T) {
	trChat := &scriptedChat{replies: []string{validTranslationJSON}}
	svc, _, questions := newTestRunService(&scriptedChat{}, trChat)

	seed := &model.Question{
		RunID:   1,
		Number:  1,
		Pattern: model.PatternMultiStatement2,
		Stem:    "Consider the following statements",
	}
	require.NoError(t, seed.SetOptions(englishOptions))
	require.NoError(t, questions.Append(seed))

	got, err := svc.RetranslateQuestion(context.Background(), seed.ID)
	require.NoError(t, err)

	assert.True(t, got.TranslationComplete)
	assert.NotEmpty(t, got.StemHindi)
	assert.Len(t, got.HindiOptionList(), 4)
}

func TestRetranslateQuestionDecrementsRunCounter(t *testing.T) {
	trChat := &scriptedChat{replies: []string{validTranslationJSON}}
	svc, runs, questions := newTestRunService(&scriptedChat{}, trChat)

	run := seedRun(t, runs, model.Blueprint{
		Total:  1,
		Quotas: []model.PatternQuota{{Pattern: model.PatternMultiStatement2, Count: 1}},
	})
	run.Status = model.RunCompleted
	run.Generated = 1
	run.Untranslated = 1
	require.NoError(t, runs.Update(run))

	seed := &model.Question{
		RunID:   run.ID,
		Number:  1,
		Pattern: model.PatternMultiStatement2,
		Stem:    "Consider the following statements",
	}
	require.NoError(t, seed.SetOptions(englishOptions))
	require.NoError(t, questions.Append(seed))

	got, err := svc.RetranslateQuestion(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.True(t, got.TranslationComplete)

	stored, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Untranslated)
}

func TestRegenerateQuestionTracksLostTranslation(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	trChat := &scriptedChat{replies: []string{"not json"}}
	svc, runs, questions := newTestRunService(genChat, trChat)

	run := seedRun(t, runs, model.Blueprint{
		Total:  1,
		Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
	})
	run.Status = model.RunCompleted
	run.Generated = 1
	require.NoError(t, runs.Update(run))

	seed := &model.Question{
		RunID:               run.ID,
		Number:              1,
		Pattern:             model.PatternSingleCorrect,
		Stem:                "old stem",
		Answer:              "A",
		StemHindi:           "पुराना प्रश्न",
		TranslationComplete: true,
	}
	require.NoError(t, seed.SetOptions([]string{"w", "x", "y", "z"}))
	require.NoError(t, questions.Append(seed))

	got, err := svc.RegenerateQuestion(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.False(t, got.TranslationComplete)

	stored, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Untranslated)
}

func TestExecuteToleratesProgressUpdateErrors(t *testing.T) {
	genChat := &scriptedChat{replies: []string{validSingleCorrectJSON}}
	svc, runs, _ := newTestRunService(genChat, nil)

	run := seedRun(t, runs, model.Blueprint{
		Total:  1,
		Quotas: []model.PatternQuota{{Pattern: model.PatternSingleCorrect, Count: 1}},
	})
	// Update 1 marks the run running; update 2 is the per-question progress
	// write, which fails here; update 3 finalizes.
	runs.failUpdates = map[int]bool{2: true}

	svc.Execute(context.Background(), run.ID)

	got, err := runs.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, 1, got.Generated)
}
