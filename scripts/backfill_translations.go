// Manual trigger for backfilling missing Hindi translations.
//
// Translation is a soft dependency during a run: when it fails, the question
// is stored in English only. This script retries the Hindi pass for every
// such question, for example after the translation endpoint was down.
//
// Usage: go run scripts/backfill_translations.go

package main

import (
	"context"
	"log"

	"examgen_backend/internal/config"
	"examgen_backend/internal/repository"
	"examgen_backend/internal/service"
	"examgen_backend/pkg/database"
	"examgen_backend/pkg/logger"
)

const batchSize = 200

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db, nil)
	runRepo := repository.NewRunRepository(db)
	translator := service.NewTranslatorService(service.NewAIService(cfg.AI), cfg.AI)

	questions, err := questionRepo.FindUntranslated(batchSize)
	if err != nil {
		log.Fatalf("Failed to list untranslated questions: %v", err)
	}
	if len(questions) == 0 {
		log.Println("No untranslated questions found.")
		return
	}

	log.Printf("Retrying translation for %d questions...", len(questions))

	ctx := context.Background()
	translated := 0
	for i := range questions {
		q := &questions[i]

		tr, err := translator.Translate(ctx, q.Stem, q.OptionList(), q.Explanation)
		if err != nil {
			log.Printf("question %d (run %d) still untranslatable: %v", q.Number, q.RunID, err)
			continue
		}

		q.StemHindi = tr.Stem
		q.SetHindiOptions(tr.Options)
		q.ExplanationHindi = tr.Explanation
		q.TranslationComplete = true
		if err := questionRepo.Update(q); err != nil {
			log.Printf("failed to store translation for question %d: %v", q.Number, err)
			continue
		}

		if run, err := runRepo.FindByID(q.RunID); err == nil && run.Untranslated > 0 {
			run.Untranslated--
			runRepo.Update(run)
		}

		translated++
	}

	log.Printf("Done: %d of %d questions translated.", translated, len(questions))
}
