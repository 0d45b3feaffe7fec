package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hana-yusof/lawcheck/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxBytes  int64  // refuse files larger than this; 0 = no limit
}

// Extractor pulls the text layer out of a contract file and normalizes it.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()

	if e.cfg.MaxBytes > 0 {
		if fi, err := os.Stat(path); err == nil && fi.Size() > e.cfg.MaxBytes {
			return TextExtractionResult{}, fmt.Errorf("file too large: %d bytes", fi.Size())
		}
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	var res TextExtractionResult
	var err error
	switch ext {
	case "pdf":
		res, err = e.pdfToText(ctx, path)
	case "txt":
		res, err = e.plainText(path)
	default:
		return TextExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	if err != nil {
		e.logger.Error("extract.failed", "path", path, "error", err)
		return res, err
	}

	res.Text = Normalize(res.Text)
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"text_bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (TextExtractionResult, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return TextExtractionResult{Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}
	text := string(out)
	// a form feed \f is used as page separator by default
	pages := 1 + strings.Count(text, "\f")
	return TextExtractionResult{Text: text, Pages: pages, Method: "pdf-text"}, nil
}

func (e *Extractor) plainText(path string) (TextExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return TextExtractionResult{}, fmt.Errorf("read text file: %w", err)
	}
	return TextExtractionResult{Text: string(b), Pages: 1, Method: "plain-text"}, nil
}
