package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stickermaker/internal/adapters/localstorage"
	"stickermaker/internal/adapters/opener"
	"stickermaker/internal/adapters/removebg"
	"stickermaker/internal/config"
	"stickermaker/internal/core/domain"
	"stickermaker/internal/core/ports"
	"stickermaker/internal/imageops"
	"stickermaker/internal/report"
	"stickermaker/internal/service"
)

func main() {
	modeNames := make([]string, len(domain.Modes))
	for i, m := range domain.Modes {
		modeNames[i] = m.String()
	}

	modeFlag := flag.String("mode", domain.ModeStickerRemoveBG.String(), "output mode: "+strings.Join(modeNames, ", "))
	dir := flag.String("dir", "", "process every image in this folder (skips previous outputs)")
	envFile := flag.String("env-file", config.DefaultEnvFile, "env file holding REMOVEBG_API_KEY")
	apiKey := flag.String("api-key", "", "remove.bg API key (overrides the environment)")
	saveKey := flag.Bool("save-key", false, "persist -api-key into the env file")
	openDir := flag.Bool("open", false, "open the output folder when done")
	writeReport := flag.Bool("report", false, "write an XLSX report into the output folder")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	if *saveKey {
		if err := config.SaveAPIKey(*envFile, *apiKey); err != nil {
			logger.Fatalf("Failed to save API key: %v", err)
		}
		logger.Printf("API key saved to %s", *envFile)
		if saveOnly(flag.Args(), *dir) {
			return
		}
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if k := strings.TrimSpace(*apiKey); k != "" {
		cfg.RemoveBG.APIKey = k
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	mode, err := domain.ParseMode(*modeFlag)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	files := flag.Args()
	if *dir != "" {
		found, err := localstorage.ScanFolder(*dir)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		if len(found) == 0 {
			logger.Fatalf("No image files found in %s", *dir)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		fmt.Println("Usage: sticker-cli [-mode <mode>] [-dir <folder>] [image ...]")
		fmt.Println("\nModes:")
		for _, m := range domain.Modes {
			fmt.Printf("  %-17s %s\n", m.String(), m.Label())
		}
		os.Exit(1)
	}

	if err := cfg.RequireAPIKey(mode); err != nil {
		logger.Fatalf("Please set %s or pass -api-key: %v", config.APIKeyVar, err)
	}

	var remover ports.BackgroundRemover
	if cfg.RemoveBG.APIKey != "" {
		remover = removebg.NewClient(cfg.RemoveBG, logger)
	}
	renderer := &imageops.Renderer{MaxSide: cfg.Sticker.MaxSide, Quality: cfg.Sticker.Quality}
	orchestrator := service.NewOrchestrator(remover, localstorage.NewLocalStorage(), renderer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("Received interrupt signal, stopping after the current file...")
		cancel()
	}()

	logger.Printf("Mode: %s", mode.Label())
	events, err := orchestrator.Start(ctx, files, mode)
	if err != nil {
		logger.Fatalf("Failed to start batch: %v", err)
	}

	var result *domain.BatchResult
	for ev := range events {
		switch ev.Kind {
		case domain.EventFileDone:
			fmt.Printf("[%d/%d] %s\n", ev.Current, ev.Total, service.Describe(ev.File))
		case domain.EventFinished:
			if ev.Err != nil {
				logger.Fatalf("Batch failed: %v", ev.Err)
			}
			result = ev.Result
		}
	}
	if result == nil {
		logger.Fatalf("Batch ended without a result")
	}

	fmt.Println("\n=== Batch Summary ===")
	fmt.Printf("Job ID:    %s\n", result.Job.ID)
	fmt.Printf("Result:    %s\n", result.Summary())
	fmt.Printf("Saved to:  %s\n", result.Job.OutputDir)
	if result.Cancelled {
		fmt.Printf("Cancelled: %d file(s) not attempted\n", len(result.Job.Files)-len(result.Files))
	}

	if *writeReport {
		if err := saveReport(ctx, result); err != nil {
			logger.Printf("Failed to write report: %v", err)
		}
	}

	if *openDir {
		if err := opener.NewOpener().Open(context.Background(), result.Job.OutputDir); err != nil {
			logger.Printf("Could not open output folder: %v", err)
		}
	}

	if result.Failed > 0 || result.Cancelled {
		os.Exit(2)
	}
}

// saveOnly reports whether the invocation only persists the API key.
func saveOnly(files []string, dir string) bool {
	return len(files) == 0 && dir == ""
}

func saveReport(ctx context.Context, result *domain.BatchResult) error {
	data, err := report.BuildXLSX(result)
	if err != nil {
		return err
	}
	path := report.Path(result)
	if err := localstorage.NewLocalStorage().SaveOutput(ctx, path, data); err != nil {
		return err
	}
	fmt.Printf("Report:    %s\n", path)
	return nil
}
