package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// FSIngestor reads contract files from the local filesystem and registers
// them with the contract repository, deduplicating by content hash.
type FSIngestor struct {
	Contracts repository.ContractRepository
	UploadDir string // destination for IngestReader streams
	Logger    *slog.Logger
}

func NewFSIngestor(contracts repository.ContractRepository, uploadDir string, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Contracts: contracts, UploadDir: uploadDir, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			i.Logger.Warn("close file error", "path", abs, "error", cerr)
		}
	}()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}
	sum := h.Sum(nil)

	row, dedup, err := i.Contracts.UpsertByHash(ctx, entity.Contract{
		Filename:    filepath.Base(abs),
		SourcePath:  abs,
		ContentHash: sum,
		FileExt:     ext,
		FileSize:    size,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	i.Logger.Info("contract ingested",
		"contract_id", row.ID, "filename", row.Filename, "deduplicated", dedup)

	return IngestionResult{
		SourcePath:   row.SourcePath,
		ContractID:   row.ID,
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		UploadedAt:   row.UploadedAt,
	}, nil
}

// IngestReader writes the stream to the upload directory under a collision-free
// name, then runs the usual path ingest on it.
func (i *FSIngestor) IngestReader(ctx context.Context, filename string, r io.Reader) (IngestionResult, error) {
	var out IngestionResult

	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	if err := os.MkdirAll(i.UploadDir, 0o755); err != nil {
		return out, fmt.Errorf("create upload dir: %w", err)
	}

	base := uuid.New().String() + "-" + filepath.Base(filename)
	dst := filepath.Join(i.UploadDir, base)
	f, err := os.Create(dst)
	if err != nil {
		return out, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return out, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return out, fmt.Errorf("close upload file: %w", err)
	}

	res, err := i.IngestPath(ctx, dst)
	if err != nil {
		_ = os.Remove(dst)
		return out, err
	}
	if res.Deduplicated {
		// the canonical copy already exists; drop the duplicate upload
		_ = os.Remove(dst)
	}
	return res, nil
}
