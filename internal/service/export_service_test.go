package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"examgen_backend/internal/config"
	"examgen_backend/internal/model"
	"examgen_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture(t *testing.T) (*model.Run, []model.Question) {
	t.Helper()

	run := &model.Run{
		Code:    "abc-123",
		Name:    "General Studies Mock 1",
		Subject: "polity",
		Status:  model.RunCompleted,
	}

	translated := model.Question{
		RunID:               1,
		Number:              1,
		Pattern:             model.PatternSingleCorrect,
		Stem:                "Which one of the following articles deals with the Finance Commission?",
		Answer:              "C",
		Explanation:         "Article 280.",
		StemHindi:           "वित्त आयोग से कौन सा अनुच्छेद संबंधित है?",
		TranslationComplete: true,
	}
	require.NoError(t, translated.SetOptions([]string{"Article 110", "Article 148", "Article 280", "Article 324"}))
	require.NoError(t, translated.SetHindiOptions([]string{"अनुच्छेद 110", "अनुच्छेद 148", "अनुच्छेद 280", "अनुच्छेद 324"}))

	englishOnly := model.Question{
		RunID:   1,
		Number:  2,
		Pattern: model.PatternMultiStatement2,
		Stem: "Consider the following statements:\n" +
			"1. The CAG audits state accounts.\n" +
			"2. The CAG is appointed by the Prime Minister.\n" +
			"Which of the statements given above is/are correct?",
		Answer: "A",
	}
	require.NoError(t, englishOnly.SetOptions(englishOptions))

	return run, []model.Question{translated, englishOnly}
}

func TestBuildPaperProducesDocx(t *testing.T) {
	run, questions := exportFixture(t)

	buf, err := BuildPaper(run, questions)
	require.NoError(t, err)
	require.NotNil(t, buf)

	// A DOCX file is a zip archive; check the magic bytes.
	raw := buf.Bytes()
	require.Greater(t, len(raw), 4)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")))
}

// documentXML unzips the built paper and returns word/document.xml.
func documentXML(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(raw)
	}
	t.Fatal("word/document.xml missing from archive")
	return ""
}

func TestBuildPaperWritesAnswerLineAndSeparator(t *testing.T) {
	run, questions := exportFixture(t)

	buf, err := BuildPaper(run, questions)
	require.NoError(t, err)

	xml := documentXML(t, buf)
	assert.Contains(t, xml, "Answer: C")
	assert.Contains(t, xml, "Answer: A")
	assert.Equal(t, len(questions), strings.Count(xml, strings.Repeat("_", 40)))
}

func TestBuildPaperRendersAnswerKeyTable(t *testing.T) {
	run, questions := exportFixture(t)

	buf, err := BuildPaper(run, questions)
	require.NoError(t, err)

	xml := documentXML(t, buf)
	assert.Contains(t, xml, "<w:tbl")
	assert.Contains(t, xml, "Q.No")
}

func TestBuildPaperSplitsLongAnswerKeyIntoColumnPairs(t *testing.T) {
	run, _ := exportFixture(t)

	var questions []model.Question
	for i := 1; i <= 25; i++ {
		q := model.Question{
			RunID:   1,
			Number:  i,
			Pattern: model.PatternSingleCorrect,
			Stem:    fmt.Sprintf("Placeholder question %d?", i),
			Answer:  "B",
		}
		require.NoError(t, q.SetOptions(englishOptions))
		questions = append(questions, q)
	}

	buf, err := BuildPaper(run, questions)
	require.NoError(t, err)

	// 25 answers at 20 rows per column pair means two Q.No/Ans pairs.
	xml := documentXML(t, buf)
	assert.Equal(t, 2, strings.Count(xml, "Q.No"))
	assert.Equal(t, 25, strings.Count(xml, "Answer: B"))
}

func TestExportRejectsUnfinishedRun(t *testing.T) {
	run, questions := exportFixture(t)
	run.Status = model.RunRunning

	svc := NewExportService(&StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}})

	_, err := svc.Export(context.Background(), run, questions)
	require.ErrorIs(t, err, util.ErrRunNotCompleted)
}

func TestExportRejectsEmptyRun(t *testing.T) {
	run, _ := exportFixture(t)

	svc := NewExportService(&StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}})

	_, err := svc.Export(context.Background(), run, nil)
	require.Error(t, err)
}

func TestExportWritesThroughStorage(t *testing.T) {
	run, questions := exportFixture(t)

	dir := t.TempDir()
	svc := NewExportService(&StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}})

	url, err := svc.Export(context.Background(), run, questions)
	require.NoError(t, err)
	assert.Equal(t, "/exports/run_abc-123.docx", url)
}
