package database

import (
	"encoding/json"
	"fmt"
	"log"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Run{},
		&model.Question{},
		&model.BlueprintTemplate{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaultBlueprint(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedDefaultBlueprint inserts the stock blueprint used when a run is created
// without one: the standard pattern mix of a full-length paper.
func seedDefaultBlueprint(db *gorm.DB) error {
	var count int64
	db.Model(&model.BlueprintTemplate{}).Count(&count)
	if count > 0 {
		return nil
	}

	bp := model.Blueprint{
		Total: 10,
		Quotas: []model.PatternQuota{
			{Pattern: model.PatternSingleCorrect, Count: 3},
			{Pattern: model.PatternMultiStatement2, Count: 2},
			{Pattern: model.PatternMultiStatement3, Count: 2},
			{Pattern: model.PatternHowMany3, Count: 1},
			{Pattern: model.PatternAssertionReason, Count: 1},
			{Pattern: model.PatternSequencing, Count: 1},
		},
	}
	raw, err := json.Marshal(bp)
	if err != nil {
		return err
	}

	return db.Create(&model.BlueprintTemplate{
		Name:      "standard-paper",
		Spec:      string(raw),
		IsDefault: true,
	}).Error
}
