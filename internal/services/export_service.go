package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

const (
	gradebookSheet = "Gradebook"
	questionsSheet = "Questions"
)

var gradebookHeader = []interface{}{
	"Submission ID", "User ID", "Attempt", "Status", "Auto Score", "Max Score",
	"Final Score", "Submitted At", "Graded By", "Released At",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportGradebook writes every submission of a page to an xlsx workbook: one
// summary row per submission and one row per answered section.
func (s *exportService) ExportGradebook(ctx context.Context, pageID uint, mentorID string) ([]byte, error) {
	s.logger.Info("Exporting gradebook",
		"page_id", pageID,
		"mentor_id", mentorID)

	page, err := loadPage(ctx, s.repo, pageID)
	if err != nil {
		return nil, err
	}
	if err := requireMentor(ctx, s.repo, page.CourseID, mentorID, pageID, "page", "export gradebook"); err != nil {
		return nil, err
	}

	subs, _, err := s.repo.Submission().ListByPage(ctx, pageID, repositories.SubmissionFilters{
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	if err := writeRow(f, gradebookSheet, 1, gradebookHeader); err != nil {
		return nil, err
	}
	if err := writeRow(f, questionsSheet, 1, []interface{}{"Submission ID", "User ID", "Section ID", "Correct", "Auto Score", "Max Score", "Override", "Feedback"}); err != nil {
		return nil, err
	}

	questionRow := 2
	for i, sub := range subs {
		if err := writeRow(f, gradebookSheet, i+2, summaryRow(sub)); err != nil {
			return nil, err
		}
		for _, row := range answerRows(sub) {
			if err := writeRow(f, questionsSheet, questionRow, row); err != nil {
				return nil, err
			}
			questionRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Gradebook exported",
		"page_id", pageID,
		"submissions", len(subs))

	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func summaryRow(sub *models.Submission) []interface{} {
	var final interface{} = ""
	gradedBy := ""
	if sub.Grading != nil {
		final = sub.Grading.FinalScore
		gradedBy = sub.Grading.GradedBy
	}
	return []interface{}{
		sub.ID,
		sub.UserID,
		sub.AttemptNumber,
		string(sub.Status),
		sub.AutoScore,
		sub.MaxScore,
		final,
		formatTime(sub.SubmittedAt),
		gradedBy,
		formatTime(sub.ReleasedAt),
	}
}

func answerRows(sub *models.Submission) [][]interface{} {
	overrides := map[string]models.GradeOverride{}
	if sub.Grading != nil {
		for _, o := range sub.Grading.Overrides {
			overrides[o.SectionID] = o
		}
	}

	rows := make([][]interface{}, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		row := []interface{}{sub.ID, sub.UserID, a.SectionID, optionalBool(a.IsCorrect), optionalFloat(a.AutoScore), optionalFloat(a.MaxScore), "", ""}
		if o, ok := overrides[a.SectionID]; ok {
			row[6] = o.Score
			if o.Feedback != nil {
				row[7] = *o.Feedback
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalBool(v *bool) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
