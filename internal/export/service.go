package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// Service produces XLSX bytes for compliance reports.
type Service struct {
	jobsRepo    repository.CheckJobRepository
	resultsRepo repository.ClauseResultRepository
	logger      *slog.Logger
}

func NewService(jobs repository.CheckJobRepository, results repository.ClauseResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobsRepo: jobs, resultsRepo: results, logger: logger}
}

// verdict fill colors; grey marks clauses the evaluator could not judge.
var statusFills = map[constants.ComplianceStatus]string{
	constants.Compliant:          "C6EFCE",
	constants.PartiallyCompliant: "FFEB9C",
	constants.NonCompliant:       "FFC7CE",
	constants.EvaluationFailed:   "D9D9D9",
}

// ExportReportXLSX returns an XLSX workbook for the given check job: one row
// per clause plus a verdict summary block, with status cells color-coded.
func (s *Service) ExportReportXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()

	job, err := s.jobsRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	rows, err := s.resultsRepo.ListForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Compliance"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	statusStyles := make(map[constants.ComplianceStatus]int, len(statusFills))
	for status, color := range statusFills {
		id, serr := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if serr != nil {
			return nil, serr
		}
		statusStyles[status] = id
	}

	headers := []string{"#", "Clause", "Text", "Status", "Reasoning", "Citations"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	counts := map[constants.ComplianceStatus]int{}
	for _, r := range rows {
		write := func(col int, v any) string {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
			return cell
		}

		write(1, r.Position+1)
		write(2, r.Label)
		write(3, truncate(r.Body, 500))
		statusCell := write(4, r.Status)
		write(5, truncate(r.Reasoning, 500))
		write(6, strings.Join(r.Citations, "; "))

		status := constants.ComplianceStatus(r.Status)
		if styleID, ok := statusStyles[status]; ok {
			_ = f.SetCellStyle(sheet, statusCell, statusCell, styleID)
		}
		counts[status]++
		row++
	}

	// summary block under the table
	row++
	summary := []struct {
		label  string
		status constants.ComplianceStatus
	}{
		{"Compliant", constants.Compliant},
		{"Partially compliant", constants.PartiallyCompliant},
		{"Non-compliant", constants.NonCompliant},
		{"Not evaluated", constants.EvaluationFailed},
	}
	titleCell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheet, titleCell, "Summary")
	_ = f.SetCellStyle(sheet, titleCell, titleCell, headerStyle)
	row++
	for _, line := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		countCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, labelCell, line.label)
		_ = f.SetCellValue(sheet, countCell, counts[line.status])
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)  // position
	_ = f.SetColWidth(sheet, "B", "B", 10) // label
	_ = f.SetColWidth(sheet, "C", "C", 60) // clause text
	_ = f.SetColWidth(sheet, "D", "D", 22) // status
	_ = f.SetColWidth(sheet, "E", "E", 60) // reasoning
	_ = f.SetColWidth(sheet, "F", "F", 36) // citations

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID.String(),
		"contract_id", job.ContractID.String(),
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
