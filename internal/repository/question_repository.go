package repository

import (
	"context"
	"encoding/json"
	"time"

	"examgen_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	recentBlueprintsKey = "examgen:recent_blueprints"
	recentBlueprintsTTL = 10 * time.Minute
)

type QuestionRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewQuestionRepository(db *gorm.DB, rdb *redis.Client) *QuestionRepository {
	return &QuestionRepository{DB: db, RDB: rdb}
}

// Append stores one validated question. Called only from the run's single
// generation flow; each call is one INSERT, so it stays safe if generation is
// ever parallelized.
func (r *QuestionRepository) Append(q *model.Question) error {
	if err := r.DB.Create(q).Error; err != nil {
		return err
	}
	if r.RDB != nil {
		r.RDB.Del(context.Background(), recentBlueprintsKey)
	}
	return nil
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByRunID returns all questions of a run ordered by question number.
func (r *QuestionRepository) FindByRunID(runID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("run_id = ?", runID).Order("number ASC").Find(&questions).Error
	return questions, err
}

// MaxNumber returns the highest question number in a run, 0 when empty. Used
// to continue numbering when more questions are added to an existing run.
func (r *QuestionRepository) MaxNumber(runID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.Question{}).Where("run_id = ?", runID).
		Select("MAX(number)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// FindUntranslated returns questions whose Hindi pass soft-failed, oldest
// first.
func (r *QuestionRepository) FindUntranslated(limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("translation_complete = ?", false).
		Order("id ASC").Limit(limit).Find(&questions).Error
	return questions, err
}

// RecentBlueprints returns the blueprints of the most recently accepted
// questions, Redis cache-aside. The planner feeds these into its
// avoid-repetition hint.
func (r *QuestionRepository) RecentBlueprints(limit int) ([]string, error) {
	ctx := context.Background()

	if r.RDB != nil {
		if cached, err := r.RDB.Get(ctx, recentBlueprintsKey).Result(); err == nil {
			var blueprints []string
			if json.Unmarshal([]byte(cached), &blueprints) == nil {
				return blueprints, nil
			}
		}
	}

	var blueprints []string
	err := r.DB.Model(&model.Question{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("blueprint", &blueprints).Error
	if err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if raw, err := json.Marshal(blueprints); err == nil {
			r.RDB.Set(ctx, recentBlueprintsKey, raw, recentBlueprintsTTL)
		}
	}

	return blueprints, nil
}
