package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: contract file -> normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string // normalized contract body, see Normalize
	Pages    int
	Method   string // "pdf-text" | "plain-text"
	Duration time.Duration
	Warnings []string
}
