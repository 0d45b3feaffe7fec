package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/entity"
)

type stubJobs struct {
	job *entity.CheckJob
}

func (s *stubJobs) Start(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	return nil, errors.New("not used")
}

func (s *stubJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.CheckJob, error) {
	if s.job == nil || s.job.ID != id {
		return nil, errors.New("job not found")
	}
	return s.job, nil
}

func (s *stubJobs) LatestForContract(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	return s.job, nil
}

func (s *stubJobs) SetExtracted(context.Context, uuid.UUID, string) error { return nil }
func (s *stubJobs) SetSegmented(context.Context, uuid.UUID, int) error    { return nil }
func (s *stubJobs) Finish(context.Context, uuid.UUID, constants.JobStatus, string) error {
	return nil
}

type stubResults struct {
	rows []*entity.ClauseResult
}

func (s *stubResults) Upsert(context.Context, *entity.ClauseResult) error { return nil }
func (s *stubResults) ListForJob(context.Context, uuid.UUID) ([]*entity.ClauseResult, error) {
	return s.rows, nil
}

func TestExportReportXLSX(t *testing.T) {
	jobID := uuid.New()
	jobs := &stubJobs{job: &entity.CheckJob{
		ID:         jobID,
		ContractID: uuid.New(),
		Status:     string(constants.JobStatusChecked),
		StartedAt:  time.Now().UTC(),
	}}
	results := &stubResults{rows: []*entity.ClauseResult{
		{
			JobID: jobID, Position: 0, Label: "1.",
			Body:      "Working hours shall not exceed eight per day.",
			Status:    string(constants.Compliant),
			Reasoning: "within the statutory limit",
		},
		{
			JobID: jobID, Position: 1, Label: "2.",
			Body:      "Overtime is mandatory and unpaid.",
			Status:    string(constants.NonCompliant),
			Reasoning: "overtime must be paid at 1.5x the hourly rate",
			Citations: []string{"Employment Act 1955 s.60A", "Employment Act 1955 s.60I"},
		},
		{
			JobID: jobID, Position: 2, Label: "3.",
			Body:      "Gibberish clause.",
			Status:    string(constants.EvaluationFailed),
			Reasoning: "evaluation failed: model unavailable",
		},
	}}

	svc := NewService(jobs, results, nil)
	out, err := svc.ExportReportXLSX(context.Background(), jobID)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	const sheet = "Compliance"

	got := func(cell string) string {
		v, gerr := f.GetCellValue(sheet, cell)
		require.NoError(t, gerr)
		return v
	}

	assert.Equal(t, "Clause", got("B1"))
	assert.Equal(t, "Status", got("D1"))

	assert.Equal(t, "1.", got("B2"))
	assert.Equal(t, string(constants.Compliant), got("D2"))
	assert.Equal(t, "2.", got("B3"))
	assert.Equal(t, string(constants.NonCompliant), got("D3"))
	assert.Equal(t, "Employment Act 1955 s.60A; Employment Act 1955 s.60I", got("F3"))
	assert.Equal(t, string(constants.EvaluationFailed), got("D4"))

	// summary block: title at A6, counts below
	assert.Equal(t, "Summary", got("A6"))
	assert.Equal(t, "Compliant", got("A7"))
	assert.Equal(t, "1", got("B7"))
	assert.Equal(t, "Non-compliant", got("A9"))
	assert.Equal(t, "1", got("B9"))
	assert.Equal(t, "Not evaluated", got("A10"))
	assert.Equal(t, "1", got("B10"))
}

func TestExportReportXLSXUnknownJob(t *testing.T) {
	svc := NewService(&stubJobs{}, &stubResults{}, nil)
	_, err := svc.ExportReportXLSX(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}
