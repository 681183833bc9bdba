// Command organize classifies the documents of a local directory and
// optionally moves them into the proposed folders.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/extract"
	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/prompt"
)

var (
	cfg struct {
		Dir string `arg:"" help:"Directory holding the documents to organize" type:"existingdir"`

		// Model config
		Provider string `help:"Model provider (ollama or openai)" default:"ollama" env:"MODEL_PROVIDER"`
		Host     string `help:"Model endpoint; empty uses the provider default" default:"" env:"OLLAMA_HOST"`
		Model    string `help:"Model identifier" default:"mistral:7b-instruct-q4_K_M" env:"MODEL_NAME"`
		APIKey   string `help:"API key for OpenAI-compatible endpoints" default:"" env:"OPENAI_API_KEY"`

		// Pipeline config
		Pages      int    `help:"Page budget per document preview" default:"2"`
		Decoder    string `help:"Answer decoding (legacy or strict)" default:"legacy" enum:"legacy,strict"`
		Mode       string `help:"Which tree entries to move (top-level or recursive)" default:"top-level" enum:"top-level,recursive"`
		PromptFile string `help:"Optional YAML prompt profile" default:"" type:"path"`

		// Output config
		Dest  string `help:"Destination root; defaults to <dir>/organized" default:"" type:"path"`
		Apply bool   `help:"Move the files instead of only printing the plan"`
		Raw   bool   `help:"Print the raw model answer"`
	}
)

func main() {
	_ = kong.Parse(&cfg,
		kong.Name("organize"),
		kong.Description("Ask a language model for a folder structure and apply it."),
	)
	ctx := context.Background()

	model, err := llm.New(llm.Config{
		Provider: cfg.Provider,
		Host:     cfg.Host,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	})
	if err != nil {
		log.Fatalf("failed to create model client: %v", err)
	}

	builder := prompt.NewBuilder()
	if cfg.PromptFile != "" {
		profile, err := prompt.LoadProfile(cfg.PromptFile)
		if err != nil {
			log.Fatalf("failed to load prompt profile: %v", err)
		}
		builder = profile.Builder()
	}

	files, err := collect(cfg.Dir)
	if err != nil {
		log.Fatalf("failed to list %s: %v", cfg.Dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("no files found in %s", cfg.Dir)
	}

	previews := extract.Previews(files, cfg.Pages)
	log.Printf("extracted %d previews", len(previews))

	classifier := classify.NewClassifier(model, builder, classify.Mode(cfg.Decoder))
	res, err := classifier.Classify(ctx, previews)
	if cfg.Raw && res != nil {
		fmt.Println(res.Raw)
	}
	if err != nil {
		log.Fatalf("classification failed: %v", err)
	}

	out, err := json.MarshalIndent(res.Tree, "", "  ")
	if err != nil {
		log.Fatalf("failed to render tree: %v", err)
	}
	fmt.Println(string(out))

	r := organize.NewReorganizer(organize.Mode(cfg.Mode))
	if !cfg.Apply {
		for _, p := range r.Plan(res.Tree) {
			fmt.Printf("%s -> %s\n", p.Filename, p.Folder)
		}
		return
	}

	dest := cfg.Dest
	if dest == "" {
		dest = filepath.Join(cfg.Dir, "organized")
	}

	report, err := r.Reorganize(res.Tree, cfg.Dir, dest)
	for _, o := range report.Moved {
		log.Printf("moved %s -> %s", o.Filename, o.Destination)
	}
	if err != nil {
		log.Fatalf("reorganization stopped (%d moved, %d not attempted): %v", len(report.Moved), len(report.Pending), err)
	}
}

// collect lists the regular files directly inside dir, sorted by name.
func collect(dir string) ([]*models.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]*models.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, &models.FileInfo{
			Name:       entry.Name(),
			Path:       filepath.Join(dir, entry.Name()),
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
