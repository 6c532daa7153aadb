package repository

import (
	"examgen_backend/internal/model"

	"gorm.io/gorm"
)

type RunRepository struct {
	DB *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{DB: db}
}

func (r *RunRepository) Create(run *model.Run) error {
	return r.DB.Create(run).Error
}

func (r *RunRepository) Update(run *model.Run) error {
	return r.DB.Save(run).Error
}

func (r *RunRepository) FindByID(id uint) (*model.Run, error) {
	var run model.Run
	err := r.DB.First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) FindByCode(code string) (*model.Run, error) {
	var run model.Run
	err := r.DB.Where("code = ?", code).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindAllWithPagination lists runs newest first.
func (r *RunRepository) FindAllWithPagination(page, limit int) ([]model.Run, int64, error) {
	var runs []model.Run
	var total int64

	err := r.DB.Model(&model.Run{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err = r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error

	return runs, total, err
}

// Delete removes a run and all of its questions in one transaction.
func (r *RunRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Run{}, id).Error
	})
}
