package ingest

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	ContractID   uuid.UUID
	Deduplicated bool
	HashHex      string
	FileExt      string
	UploadedAt   time.Time
}

// Ingestor is the behavior the upload handler depends on.
type Ingestor interface {
	// IngestPath ingests a contract file already on disk.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestReader stores an uploaded stream under filename, then ingests it.
	IngestReader(ctx context.Context, filename string, r io.Reader) (IngestionResult, error)
}
