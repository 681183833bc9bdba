package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doc-organizer/backend/internal/api"
	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/config"
	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/prompt"
	"github.com/doc-organizer/backend/internal/session"
	"github.com/doc-organizer/backend/internal/storage"
	"github.com/doc-organizer/backend/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := os.Getenv("ORGANIZER_CONFIG")
	if configPath == "" {
		configPath = filepath.Join(exeDir, "DocumentOrganizer.config")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	decodeMode, err := classify.ParseMode(cfg.Classifier.Mode)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	organizeMode, err := organize.ParseMode(cfg.Classifier.OrganizeMode)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var builder *prompt.Builder
	if cfg.Classifier.PromptFile != "" {
		profile, err := prompt.LoadProfile(cfg.Classifier.PromptFile)
		if err != nil {
			fmt.Printf("Failed to load prompt profile: %v\n", err)
			os.Exit(1)
		}
		builder = profile.Builder()
	}

	host := cfg.Model.Host
	if strings.EqualFold(cfg.Model.Provider, llm.ProviderOpenAI) && host == llm.DefaultOllamaHost {
		host = ""
	}
	model, err := llm.New(llm.Config{
		Provider:          cfg.Model.Provider,
		Host:              host,
		Model:             cfg.Model.Name,
		APIKey:            cfg.Model.APIKey,
		Timeout:           cfg.ModelTimeout(),
		RequestsPerMinute: cfg.Model.RequestsPerMinute,
	})
	if err != nil {
		fmt.Printf("Failed to create model client: %v\n", err)
		os.Exit(1)
	}

	fileStore, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Batches do not survive a restart, so neither do their ledgers.
	var ledger upload.Ledger
	if cfg.Storage.EnablePlanLedger {
		plans, err := session.NewPlanStore(cfg.Storage.PlansDirectory)
		if err != nil {
			fmt.Printf("Failed to initialize plan store: %v\n", err)
			os.Exit(1)
		}
		if stale, err := plans.Batches(); err == nil {
			for _, id := range stale {
				if err := plans.Remove(id); err != nil {
					fmt.Printf("Warning: %v\n", err)
				}
			}
			if len(stale) > 0 {
				fmt.Printf("Removed %d stale placement ledgers\n", len(stale))
			}
		}
		ledger = plans
	}

	sessionMgr := session.NewManagerWithLimit(cfg.Processing.MaxBatches)

	batchMgr := upload.NewManager(fileStore, sessionMgr, classify.NewClassifier(model, builder, decodeMode), upload.Config{
		OrganizedDir: cfg.Storage.OrganizedDirectory,
		PageBudget:   cfg.Processing.PageBudget,
		Mode:         organizeMode,
		Ledger:       ledger,
	})

	// Start background batch cleanup
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(cfg.SessionTimeout())
		}
	}()

	e, err := api.NewServer(&api.Dependencies{
		Batches: batchMgr,
		Model:   model,
		Version: Version,
	}, api.MiddlewareConfig{
		BodyLimit:      cfg.Server.BodyLimit,
		LogLevel:       cfg.Advanced.LogLevel,
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	})
	if err != nil {
		fmt.Printf("Failed to create server: %v\n", err)
		os.Exit(1)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Document Organizer                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Model:      %-45s║\n", cfg.Model.Provider+" / "+cfg.Model.Name)
	fmt.Printf("║  Decoder:    %-45s║\n", string(decodeMode)+" / "+string(organizeMode))
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Organized: %-46s║\n", cfg.Storage.OrganizedDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)

	e.Logger.Fatal(e.StartServer(s))
}
