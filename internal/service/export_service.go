package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"examgen_backend/internal/model"
	"examgen_backend/internal/util"
	"examgen_backend/pkg/logger"

	"github.com/fumiama/go-docx"
	"go.uber.org/zap"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ExportService renders a completed run into a bilingual DOCX paper and
// hands the bytes to the storage provider.
type ExportService struct {
	storage *StorageService
}

func NewExportService(storage *StorageService) *ExportService {
	return &ExportService{storage: storage}
}

// Export builds the paper for a completed run and returns the stored URL.
func (s *ExportService) Export(ctx context.Context, run *model.Run, questions []model.Question) (string, error) {
	if run.Status != model.RunCompleted {
		return "", fmt.Errorf("run %s is %s: %w", run.Code, run.Status, util.ErrRunNotCompleted)
	}
	if len(questions) == 0 {
		return "", fmt.Errorf("run %s has no questions to export", run.Code)
	}

	buf, err := BuildPaper(run, questions)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("run_%s.docx", run.Code)
	url, err := s.storage.Upload(ctx, filename, bytes.NewReader(buf.Bytes()), int64(buf.Len()), docxContentType)
	if err != nil {
		return "", err
	}

	logger.Log.Info("paper exported",
		zap.String("run", run.Code),
		zap.Int("questions", len(questions)),
		zap.String("url", url),
	)
	return url, nil
}

// BuildPaper renders the DOCX document. Hindi text precedes English for each
// question; questions whose translation is incomplete appear in English only.
func BuildPaper(run *model.Run, questions []model.Question) (*bytes.Buffer, error) {
	doc := docx.New().WithDefaultTheme()

	title := run.Name
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s Question Paper", run.Subject)
	}
	doc.AddParagraph().Justification("center").AddText(title).Size("32").Bold()
	doc.AddParagraph()

	for _, q := range questions {
		writeQuestion(doc, &q)
	}

	writeAnswerKey(doc, questions)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return &buf, nil
}

func writeQuestion(doc *docx.Docx, q *model.Question) {
	if q.TranslationComplete && strings.TrimSpace(q.StemHindi) != "" {
		writeMultiline(doc, fmt.Sprintf("Q%d. %s", q.Number, q.StemHindi), true)
	}
	writeMultiline(doc, fmt.Sprintf("Q%d. %s", q.Number, q.Stem), !q.TranslationComplete)

	options := q.OptionList()
	hindi := q.HindiOptionList()
	for i, opt := range options {
		letter := string(rune('a' + i))
		if q.TranslationComplete && i < len(hindi) {
			doc.AddParagraph().AddText(fmt.Sprintf("(%s) %s", letter, hindi[i]))
		}
		doc.AddParagraph().AddText(fmt.Sprintf("(%s) %s", letter, opt))
	}

	doc.AddParagraph().AddText(fmt.Sprintf("Answer: %s", q.Answer))
	doc.AddParagraph().AddText(strings.Repeat("_", 40))
	doc.AddParagraph()
}

// answerKeyRows caps the answer-key table at 20 entries per Q.No/Ans column
// pair; longer papers spill into further column pairs.
const answerKeyRows = 20

func writeAnswerKey(doc *docx.Docx, questions []model.Question) {
	if len(questions) == 0 {
		return
	}
	doc.AddParagraph().AddPageBreaks()
	doc.AddParagraph().Justification("center").AddText("Answer Key").Size("28").Bold()

	pairs := (len(questions) + answerKeyRows - 1) / answerKeyRows
	rows := len(questions)
	if rows > answerKeyRows {
		rows = answerKeyRows
	}

	tbl := doc.AddTable(rows+1, pairs*2, 8400, nil)
	for k := 0; k < pairs; k++ {
		tbl.TableRows[0].TableCells[2*k].AddParagraph().AddText("Q.No").Bold()
		tbl.TableRows[0].TableCells[2*k+1].AddParagraph().AddText("Ans").Bold()
	}
	for i, q := range questions {
		k := i / answerKeyRows
		r := i%answerKeyRows + 1
		tbl.TableRows[r].TableCells[2*k].AddParagraph().AddText(strconv.Itoa(q.Number))
		tbl.TableRows[r].TableCells[2*k+1].AddParagraph().AddText(q.Answer)
	}
}

// writeMultiline keeps the numbered statements of a stem on their own lines.
func writeMultiline(doc *docx.Docx, text string, bold bool) {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" && i > 0 {
			continue
		}
		r := doc.AddParagraph().AddText(line)
		if bold && i == 0 {
			r.Bold()
		}
	}
}
