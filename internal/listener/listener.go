package listener

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"knitnorm/internal/config"
	"knitnorm/internal/logger"
	"knitnorm/internal/pipeline"
	"knitnorm/internal/storage"
)

// Service polls the input directory for raw-record JSON files, processes
// each batch and optionally refreshes the XLSX report.
type Service struct {
	db   *storage.DB
	cfg  config.Config
	proc *pipeline.ProcessingService
	log  *logger.Logger
	seen map[string]struct{}
}

func NewService(db *storage.DB, cfg config.Config, proc *pipeline.ProcessingService, log *logger.Logger) *Service {
	return &Service{db: db, cfg: cfg, proc: proc, log: log, seen: map[string]struct{}{}}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			s.log.Error("watch cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	ingested, err := s.ingestNewFiles()
	if err != nil {
		return err
	}

	result, err := s.proc.ProcessPending(ctx, s.cfg.WatchBatch)
	if err != nil {
		return err
	}
	if ingested > 0 || result.Processed > 0 || result.Rejected > 0 {
		s.log.Info("watch cycle done", "ingested", ingested, "processed", result.Processed, "rejected", result.Rejected)
	}

	if s.cfg.WatchAutoExport && (result.Processed > 0 || result.Rejected > 0) {
		records, objects, err := s.db.ListProcessed()
		if err != nil {
			return err
		}
		rows := pipeline.BuildReportRows(records, objects)
		out := filepath.Join(s.cfg.OutputDir, "patterns-report.xlsx")
		if err := pipeline.ExportReportXLSX(rows, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ingestNewFiles() (int, error) {
	entries, err := os.ReadDir(s.cfg.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		if _, done := s.seen[name]; done {
			continue
		}
		count, err := s.proc.IngestFile(filepath.Join(s.cfg.InputDir, name))
		if err != nil {
			s.log.Warn("skipping unreadable input", "file", name, "error", err)
			s.seen[name] = struct{}{}
			continue
		}
		s.seen[name] = struct{}{}
		total += count
	}
	return total, nil
}
