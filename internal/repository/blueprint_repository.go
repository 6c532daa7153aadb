package repository

import (
	"examgen_backend/internal/model"

	"gorm.io/gorm"
)

type BlueprintTemplateRepository struct {
	DB *gorm.DB
}

func NewBlueprintTemplateRepository(db *gorm.DB) *BlueprintTemplateRepository {
	return &BlueprintTemplateRepository{DB: db}
}

func (r *BlueprintTemplateRepository) Create(t *model.BlueprintTemplate) error {
	return r.DB.Create(t).Error
}

func (r *BlueprintTemplateRepository) FindAll() ([]model.BlueprintTemplate, error) {
	var templates []model.BlueprintTemplate
	err := r.DB.Order("name ASC").Find(&templates).Error
	return templates, err
}

func (r *BlueprintTemplateRepository) FindDefault() (*model.BlueprintTemplate, error) {
	var t model.BlueprintTemplate
	err := r.DB.Where("is_default = ?", true).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
