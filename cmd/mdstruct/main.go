// Command mdstruct turns a prompt pair into a schema-conforming structured
// document. It either invokes an LLM backend and validates the output, or
// with -validate checks already-generated text without any network call.
// The canonical document goes to stdout; diagnostics go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gnkm/mdstruct/internal/config"
	"github.com/gnkm/mdstruct/internal/document"
	"github.com/gnkm/mdstruct/internal/ingest"
	"github.com/gnkm/mdstruct/internal/llm"
	"github.com/gnkm/mdstruct/internal/pipeline"
	"github.com/gnkm/mdstruct/internal/prompts"
)

func main() {
	var (
		promptsPath = flag.String("prompts", "", "path to a TOML file with [prompt] system and user")
		configPath  = flag.String("config", "", "path to a TOML generation config (temperature, model)")
		backendName = flag.String("backend", "", "llm backend to use (default from LLM_BACKEND)")
		modelName   = flag.String("model", "", "model override")
		validate    = flag.String("validate", "", "validate a file instead of generating ('-' for stdin)")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := config.Load()

	if *validate != "" {
		os.Exit(runValidate(cfg, *validate))
	}
	os.Exit(runGenerate(cfg, *promptsPath, *configPath, *backendName, *modelName))
}

func runValidate(cfg config.Config, path string) int {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read failed:", err)
		return 1
	}

	pipe := ingest.New(document.Options{CheckLevelRange: cfg.CheckLevelRange})
	canonical, err := pipe.RunCanonical(string(data))
	if err != nil {
		reportFailure(err)
		return 1
	}

	fmt.Println(canonical)
	return 0
}

func runGenerate(cfg config.Config, promptsPath, configPath, backendName, modelName string) int {
	if promptsPath == "" {
		fmt.Fprintln(os.Stderr, "-prompts is required (or use -validate)")
		return 2
	}

	p, err := prompts.LoadPrompts(promptsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "prompt load failed:", err)
		return 1
	}

	if backendName == "" {
		backendName = cfg.DefaultBackend
	}
	temperature := cfg.Temperature
	model := cfg.DefaultModel
	if configPath != "" {
		gen, err := prompts.LoadGenConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config load failed:", err)
			return 1
		}
		temperature = gen.Temperature
		if gen.Model != "" {
			model = gen.Model
		}
	}
	if modelName != "" {
		model = modelName
	}

	// Fail before any network call when the key is missing.
	apiKey := cfg.BackendKey(backendName)
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "no API key configured for backend %q\n", backendName)
		return 2
	}

	backend, err := llm.For(backendName, apiKey, model)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer backend.Close()

	orch := pipeline.New(&cfg, map[string]llm.Backend{backendName: backend})
	job := pipeline.NewJob(backendName, model, p.System, p.User, temperature, cfg.MaxAttempts)
	orch.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		for _, e := range snap.Progress.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		fmt.Fprintf(os.Stderr, "generation failed after %d attempt(s)\n", snap.Progress.Attempts)
		return 1
	}

	fmt.Println(snap.Canonical)
	return 0
}

// reportFailure prints the failure kind and every violation path so the
// offending payload can be fixed without rerunning.
func reportFailure(err error) {
	if kind, ok := ingest.Classify(err); ok {
		fmt.Fprintln(os.Stderr, "rejected:", kind)
	}

	var violation *document.ValidationError
	if errors.As(err, &violation) {
		for _, v := range violation.Violations {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", v.Path, v.Reason)
		}
		return
	}

	fmt.Fprintln(os.Stderr, err)
	var malformed *ingest.MalformedError
	if errors.As(err, &malformed) {
		fmt.Fprintln(os.Stderr, "raw text:")
		fmt.Fprintln(os.Stderr, malformed.Text)
	}
}
