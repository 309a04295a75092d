package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"knitnorm/internal"
	"knitnorm/internal/config"
	"knitnorm/internal/logger"
	"knitnorm/internal/storage"
	"knitnorm/internal/util"
	"knitnorm/internal/worker"
)

// ProcessingService drives the pipeline over stored raw records. Records are
// independent, so pending work is fanned out to a worker pool with no
// ordering or locking between records.
type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
	asm *Assembler
	log *logger.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, asm *Assembler, log *logger.Logger) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, asm: asm, log: log}
}

type ProcessResult struct {
	Processed int
	Rejected  int
}

// IngestFile reads one raw-record JSON file (a single object or an array of
// objects) into the store.
func (s *ProcessingService) IngestFile(path string) (int, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	records := []internal.RawRecord{}
	trimmed := strings.TrimSpace(string(blob))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(blob, &records); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		var one internal.RawRecord
		if err := json.Unmarshal(blob, &one); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, one)
	}

	stored := 0
	for i, record := range records {
		sourceRef := sourceRefFor(record, path, i)
		raw, err := json.Marshal(record)
		if err != nil {
			return stored, err
		}
		if _, err := s.db.InsertRecord(sourceRef, string(sourceTypeFor(record)), string(raw)); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func (s *ProcessingService) IngestDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		count, err := s.IngestFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.log.Warn("skipping unreadable input", "file", entry.Name(), "error", err)
			continue
		}
		total += count
	}
	return total, nil
}

// IngestRecord stores an already-parsed raw record, as produced by the page
// fetcher.
func (s *ProcessingService) IngestRecord(record internal.RawRecord, fallbackRef string) (int, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return 0, err
	}
	return s.db.InsertRecord(sourceRefFor(record, fallbackRef, 0), string(sourceTypeFor(record)), string(raw))
}

// ProcessPending assembles every pending record concurrently. Missing or
// ambiguous evidence never blocks a record; only structural validation
// failures reject one, and the rest of the batch is unaffected.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int) (ProcessResult, error) {
	start := time.Now()
	pending, err := s.db.ListRecordsByStatus("pending", limit)
	if err != nil {
		return ProcessResult{}, err
	}

	var mu sync.Mutex
	result := ProcessResult{}

	pool := worker.NewPool(s.cfg.Workers)
	pool.Start(ctx)
	for _, row := range pending {
		row := row
		err := pool.Submit(func(ctx context.Context) {
			ok := s.processOne(row)
			mu.Lock()
			if ok {
				result.Processed++
			} else {
				result.Rejected++
			}
			mu.Unlock()
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	counts, _ := json.Marshal(map[string]int{
		"pending":   len(pending),
		"processed": result.Processed,
		"rejected":  result.Rejected,
	})
	timings, _ := json.Marshal(map[string]float64{
		"totalMs": float64(time.Since(start).Milliseconds()),
	})
	if err := s.db.InsertRun(traceID(), string(counts), string(timings)); err != nil {
		s.log.Warn("failed to record run", "error", err)
	}

	return result, nil
}

func (s *ProcessingService) processOne(row internal.RecordRow) bool {
	var record internal.RawRecord
	if err := json.Unmarshal([]byte(row.RawJSON), &record); err != nil {
		msg := err.Error()
		_ = s.db.UpdateRecordStatus(row.ID, "rejected", &msg)
		return false
	}

	now := time.Now().UTC().Format(time.RFC3339)
	obj, err := s.asm.Assemble(record, sourceFor(record), util.StringPtr(now))
	if err != nil {
		var structural *StructuralError
		if errors.As(err, &structural) {
			s.log.Warn("record rejected", "sourceRef", row.SourceRef, "field", structural.Field, "invariant", structural.Invariant)
		} else {
			s.log.Warn("record rejected", "sourceRef", row.SourceRef, "error", err)
		}
		msg := err.Error()
		_ = s.db.UpdateRecordStatus(row.ID, "rejected", &msg)
		return false
	}

	canonical, err := json.Marshal(obj)
	if err != nil {
		msg := err.Error()
		_ = s.db.UpdateRecordStatus(row.ID, "rejected", &msg)
		return false
	}
	if err := s.db.UpsertObject(row.ID, string(canonical)); err != nil {
		msg := err.Error()
		_ = s.db.UpdateRecordStatus(row.ID, "rejected", &msg)
		return false
	}
	if err := s.writeObjectFile(row.ID, canonical); err != nil {
		s.log.Warn("failed to write object file", "recordId", row.ID, "error", err)
	}

	_ = s.db.UpdateRecordStatus(row.ID, "processed", nil)
	return true
}

func (s *ProcessingService) writeObjectFile(recordID int, canonical []byte) error {
	if s.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("pattern-%d.json", recordID))
	return os.WriteFile(path, canonical, 0o644)
}

// sourceFor derives the record's source from its pattern page URL. Records
// without one are manual entries.
func sourceFor(record internal.RawRecord) internal.Source {
	page := ExtractString(record, aliasPage...)
	if page == nil {
		return internal.Source{Type: internal.SourceManual}
	}

	source := internal.Source{URL: page}
	parsed, err := url.Parse(*page)
	if err != nil || parsed.Host == "" {
		source.Type = internal.SourceManual
		return source
	}

	host := strings.ToLower(parsed.Host)
	source.Site = util.StringPtr(parsed.Host)
	switch {
	case strings.Contains(host, "ravelry"):
		source.Type = internal.SourceRavelry
	case strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf"):
		source.Type = internal.SourcePDF
	default:
		source.Type = internal.SourceBlog
	}
	return source
}

func sourceTypeFor(record internal.RawRecord) internal.SourceType {
	return sourceFor(record).Type
}

func sourceRefFor(record internal.RawRecord, fallback string, index int) string {
	if page := ExtractString(record, aliasPage...); page != nil {
		return *page
	}
	if index == 0 {
		return fallback
	}
	return fmt.Sprintf("%s#%d", fallback, index)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
