package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/clause"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/export"
	"github.com/hana-yusof/lawcheck/internal/extract"
	"github.com/hana-yusof/lawcheck/internal/kb"
	"github.com/hana-yusof/lawcheck/internal/llm"
	"github.com/hana-yusof/lawcheck/internal/llm/openai"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiGrey   = "\033[90m"
	ansiBold   = "\033[1m"
)

func statusColor(s constants.ComplianceStatus) string {
	switch s {
	case constants.Compliant:
		return ansiGreen
	case constants.PartiallyCompliant:
		return ansiYellow
	case constants.NonCompliant:
		return ansiRed
	default:
		return ansiGrey
	}
}

// lawcheck runs a single contract through extract -> segment -> evaluate and
// prints a colored report, without touching Postgres.
func main() {
	var (
		kbPath   = flag.String("kb", "./lawcheck-kb.db", "knowledge base SQLite path")
		seedFile = flag.String("seed", "", "JSON seed file to load into the knowledge base first")
		kbName   = flag.String("kb-name", "labour_law", "knowledge base display name used in prompts")
		topK     = flag.Int("topk", 3, "law sections retrieved per clause")
		model    = flag.String("model", "", "override OPENAI_MODEL")
		timeout  = flag.Duration("timeout", 20*time.Minute, "overall run timeout")
		xlsxOut  = flag.String("xlsx", "", "also write the report as XLSX to this path")
		noColor  = flag.Bool("no-color", false, "disable ANSI colors")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lawcheck [flags] <contract.pdf|contract.txt>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	color := func(code string) string {
		if *noColor {
			return ""
		}
		return code
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Stage 1: text
	extractor := extract.NewExtractor(extract.Config{}, logger)
	res, err := extractor.Extract(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}

	// Stage 2: clauses
	clauses := clause.Segment(res.Text)
	if len(clauses) == 0 {
		fmt.Fprintln(os.Stderr, "could not segment contract into clauses")
		os.Exit(1)
	}
	fmt.Printf("%s%s%s: %d clauses\n\n", color(ansiBold), path, color(ansiReset), len(clauses))

	// Stage 3: knowledge base + judgments
	store, err := kb.Open(ctx, *kbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "knowledge base: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()
	if *seedFile != "" {
		if _, err := store.LoadSectionsFile(ctx, *seedFile); err != nil {
			fmt.Fprintf(os.Stderr, "seed: %v\n", err)
			os.Exit(1)
		}
	}

	evaluator := openai.NewClient(openai.Config{Model: *model}, logger)

	counts := map[constants.ComplianceStatus]int{}
	results := make([]*entity.ClauseResult, 0, len(clauses))
	for i, cl := range clauses {
		fmt.Fprintf(os.Stderr, "[%d/%d] checking clause %s\n", i+1, len(clauses), cl.Label)

		sections, serr := store.Search(ctx, cl.Body, *topK)
		if serr != nil {
			sections = nil
		}
		judgment, _, jerr := evaluator.EvaluateClause(ctx, llm.EvaluateRequest{
			ClauseLabel:   cl.Label,
			ClauseBody:    cl.Body,
			Context:       sections,
			KnowledgeBase: *kbName,
		})
		status := judgment.Status
		reasoning := judgment.Reasoning
		var citations []string
		if jerr != nil {
			status = constants.EvaluationFailed
			reasoning = jerr.Error()
		} else {
			citations = judgment.Citations
		}
		counts[status]++
		results = append(results, &entity.ClauseResult{
			Position:  i,
			Label:     cl.Label,
			Body:      cl.Body,
			Status:    string(status),
			Reasoning: reasoning,
			Citations: citations,
		})

		fmt.Printf("%s%s%s %s%s%s\n", color(ansiBold), cl.Label, color(ansiReset),
			color(statusColor(status)), status, color(ansiReset))
		fmt.Printf("  %s\n", cl.Body)
		if reasoning != "" {
			fmt.Printf("  %s→ %s%s\n", color(ansiGrey), reasoning, color(ansiReset))
		}
		for _, c := range citations {
			fmt.Printf("  %s· %s%s\n", color(ansiGrey), c, color(ansiReset))
		}
		fmt.Println()
	}

	fmt.Printf("%ssummary%s: %s%d compliant%s, %s%d partially compliant%s, %s%d non-compliant%s, %d not evaluated\n",
		color(ansiBold), color(ansiReset),
		color(ansiGreen), counts[constants.Compliant], color(ansiReset),
		color(ansiYellow), counts[constants.PartiallyCompliant], color(ansiReset),
		color(ansiRed), counts[constants.NonCompliant], color(ansiReset),
		counts[constants.EvaluationFailed],
	)
	if *xlsxOut != "" {
		if err := writeXLSX(ctx, *xlsxOut, results, logger); err != nil {
			fmt.Fprintf(os.Stderr, "xlsx: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("report written to %s\n", *xlsxOut)
	}

	if counts[constants.NonCompliant] > 0 {
		os.Exit(3)
	}
}

// writeXLSX renders the in-memory results through the export service.
func writeXLSX(ctx context.Context, path string, results []*entity.ClauseResult, logger *slog.Logger) error {
	job := &entity.CheckJob{
		ID:          uuid.New(),
		ContractID:  uuid.New(),
		Status:      string(constants.JobStatusChecked),
		ClauseCount: len(results),
		StartedAt:   time.Now().UTC(),
	}
	for _, r := range results {
		r.JobID = job.ID
	}
	svc := export.NewService(memJobs{job: job}, memResults(results), logger)
	out, err := svc.ExportReportXLSX(ctx, job.ID)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// memJobs/memResults back the export service without a database.
type memJobs struct{ job *entity.CheckJob }

func (m memJobs) Start(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	return nil, errors.New("read-only")
}

func (m memJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.CheckJob, error) {
	if m.job.ID != id {
		return nil, errors.New("job not found")
	}
	return m.job, nil
}

func (m memJobs) LatestForContract(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	return m.job, nil
}

func (m memJobs) SetExtracted(context.Context, uuid.UUID, string) error { return nil }
func (m memJobs) SetSegmented(context.Context, uuid.UUID, int) error    { return nil }
func (m memJobs) Finish(context.Context, uuid.UUID, constants.JobStatus, string) error {
	return nil
}

type memResults []*entity.ClauseResult

func (m memResults) Upsert(context.Context, *entity.ClauseResult) error { return nil }
func (m memResults) ListForJob(context.Context, uuid.UUID) ([]*entity.ClauseResult, error) {
	return m, nil
}
