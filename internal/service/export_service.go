package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/gradebook"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/export"
)

type snapshotLoader interface {
	Snapshot(ctx context.Context, actor Actor, teacherAssignmentID, periodID string) (*models.GradebookSnapshot, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type urlSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string) (exportID, relPath string, expiresAt time.Time, err error)
}

// ExportService renders gradesheets to CSV or PDF and hands out signed
// download URLs.
type ExportService struct {
	snapshots snapshotLoader
	storage   exportStorage
	signer    urlSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	baseURL   string
}

// NewExportService constructs an ExportService.
func NewExportService(snapshots snapshotLoader, storage exportStorage, signer urlSigner, baseURL string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		snapshots: snapshots,
		storage:   storage,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Export renders one gradesheet in the requested format, stores the file,
// and returns a time-limited signed download handle.
func (s *ExportService) Export(ctx context.Context, actor Actor, teacherAssignmentID, periodID, format string) (*dto.ExportResult, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	snapshot, err := s.snapshots.Snapshot(ctx, actor, teacherAssignmentID, periodID)
	if err != nil {
		return nil, err
	}
	sheet := buildExportSheet(snapshot)

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(sheet)
	case "pdf":
		title := fmt.Sprintf("%s / %s (%s)", snapshot.Assignment.ClassName, snapshot.Assignment.SubjectName, snapshot.Period.Name)
		payload, err = s.pdf.Render(sheet, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("gradesheet_%s_%s_%s.%s", teacherAssignmentID, periodID, exportID, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	s.logger.Info("gradesheet exported",
		zap.String("export_id", exportID),
		zap.String("format", format),
		zap.Int("bytes", len(payload)))
	return &dto.ExportResult{
		ExportID:    exportID,
		Format:      format,
		DownloadURL: fmt.Sprintf("%s/api/v1/exports/download?token=%s", s.baseURL, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// OpenDownload validates a signed token and opens the stored export file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, relPath, nil
}

// buildExportSheet flattens a snapshot into the tabular shape exporters
// consume: one row per student, one column per achievement (or activity
// column), plus the computed final.
func buildExportSheet(snapshot *models.GradebookSnapshot) export.Sheet {
	type column struct {
		id    string
		label string
	}
	var columns []column
	if snapshot.Gradesheet.Mode == models.ModeActivities {
		labels := make(map[string]string, len(snapshot.Achievements))
		for _, a := range snapshot.Achievements {
			labels[a.ID] = a.Title
		}
		for _, col := range snapshot.Columns {
			if !col.Active {
				continue
			}
			columns = append(columns, column{id: col.ID, label: fmt.Sprintf("%s / %s", labels[col.AchievementID], col.Label)})
		}
	} else {
		for _, a := range snapshot.Achievements {
			columns = append(columns, column{id: a.ID, label: a.Title})
		}
	}

	headers := []string{"Student", "Code"}
	for _, col := range columns {
		headers = append(headers, col.label)
	}
	headers = append(headers, "Final", "Level")

	values := make(map[string]map[string]*float64)
	for _, cell := range snapshot.Cells {
		if values[cell.EnrollmentID] == nil {
			values[cell.EnrollmentID] = make(map[string]*float64)
		}
		values[cell.EnrollmentID][cell.AchievementID] = cell.Score
	}
	for _, cell := range snapshot.ActivityCells {
		if values[cell.EnrollmentID] == nil {
			values[cell.EnrollmentID] = make(map[string]*float64)
		}
		values[cell.EnrollmentID][cell.ColumnID] = cell.Score
	}
	computed := make(map[string]models.ComputedScore, len(snapshot.Computed))
	for _, row := range snapshot.Computed {
		computed[row.EnrollmentID] = row
	}

	rows := make([]map[string]string, 0, len(snapshot.Students))
	for _, student := range snapshot.Students {
		row := map[string]string{
			"Student": student.StudentName,
			"Code":    student.StudentCode,
		}
		for _, col := range columns {
			if v := values[student.ID][col.id]; v != nil {
				row[col.label] = gradebook.FormatScore(*v)
			} else {
				row[col.label] = ""
			}
		}
		if final, ok := computed[student.ID]; ok {
			row["Final"] = gradebook.FormatScore(final.FinalScore)
			row["Level"] = final.ScaleLabel
		} else {
			row["Final"] = ""
			row["Level"] = ""
		}
		rows = append(rows, row)
	}
	return export.Sheet{Headers: headers, Rows: rows}
}
