package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"knitnorm/internal/config"
	"knitnorm/internal/fetcher"
	"knitnorm/internal/listener"
	"knitnorm/internal/logger"
	"knitnorm/internal/pipeline"
	"knitnorm/internal/storage"
	"knitnorm/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logger.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]

	if cmd == "rules:check" {
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rulesPath := fs.String("rules", cfg.RulesPath, "rules YAML file")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*rulesPath) == "" {
			must(fmt.Errorf("--rules is required"))
		}
		_, err := vocab.LoadTables(*rulesPath)
		must(err)
		fmt.Printf("rules ok: %s\n", *rulesPath)
		return
	}

	tables, err := loadTables(cfg)
	must(err)
	asm, err := pipeline.NewAssembler(tables)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	proc := pipeline.NewProcessingService(db, cfg, asm, log)

	switch cmd {
	case "normalize":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw record JSON file or directory")
		batch := fs.Int("batch", 1000, "max records per run")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		info, err := os.Stat(*input)
		must(err)
		var ingested int
		if info.IsDir() {
			ingested, err = proc.IngestDir(*input)
		} else {
			ingested, err = proc.IngestFile(*input)
		}
		must(err)

		result, err := proc.ProcessPending(context.Background(), *batch)
		must(err)
		fmt.Printf("normalize done ingested=%d processed=%d rejected=%d\n", ingested, result.Processed, result.Rejected)

	case "fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pageURL := fs.String("url", "", "pattern page URL")
		pdfURL := fs.String("pdf", "", "optional pattern PDF for full text")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*pageURL) == "" {
			must(fmt.Errorf("--url is required"))
		}

		client := fetcher.NewClient(cfg.FetchTimeoutMs, cfg.FetchRateLimitRPS, cfg.UserAgent, log)
		record, err := client.FetchRecord(context.Background(), *pageURL)
		must(err)

		if strings.TrimSpace(*pdfURL) != "" {
			if _, ok := record["full_text"]; !ok {
				text, err := client.FetchPDFText(context.Background(), *pdfURL)
				if err != nil {
					log.Warn("pdf text unavailable", "url", *pdfURL, "error", err)
				} else if strings.TrimSpace(text) != "" {
					record["full_text"] = text
				}
			}
		}

		id, err := proc.IngestRecord(record, *pageURL)
		must(err)
		result, err := proc.ProcessPending(context.Background(), 1)
		must(err)
		fmt.Printf("fetch done recordId=%d processed=%d rejected=%d\n", id, result.Processed, result.Rejected)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "patterns-report.xlsx"), "output workbook path")
		_ = fs.Parse(os.Args[2:])

		records, objects, err := db.ListProcessed()
		must(err)
		rows := pipeline.BuildReportRows(records, objects)
		must(pipeline.ExportReportXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)

	case "watch":
		svc := listener.NewService(db, cfg, proc, log)
		log.Info("watching for raw records", "dir", cfg.InputDir, "intervalSec", cfg.WatchIntervalSec)
		must(svc.Run(context.Background()))

	default:
		usage()
		os.Exit(1)
	}
}

func loadTables(cfg config.Config) (vocab.Tables, error) {
	if strings.TrimSpace(cfg.RulesPath) == "" {
		return vocab.DefaultTables(), nil
	}
	return vocab.LoadTables(cfg.RulesPath)
}

func usage() {
	fmt.Println(`usage: knitnorm <command> [flags]

commands:
  normalize    --input <file|dir> [--batch N]   ingest raw records and emit canonical objects
  fetch        --url <page> [--pdf <file>]      fetch a pattern page into the pipeline
  export:xlsx  [--out <path>]                   write the batch summary workbook
  rules:check  --rules <file>                   validate a YAML rule table file
  watch                                          poll the input directory and process batches`)
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
