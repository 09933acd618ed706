package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/llm"
	"github.com/joseph-ayodele/material-adapter/internal/llm/openai"
	"github.com/joseph-ayodele/material-adapter/internal/rules"
)

// llm previews the prompt built for a profile and, with --run, sends one
// adaptation request for the given text file.
func main() {
	var (
		input   = flag.String("in", "", "plain text file to adapt (required with --run)")
		run     = flag.Bool("run", false, "call the chat completions endpoint")
		frag    = flag.String("fragmentacao", "media", "baixa|media|alta")
		abst    = flag.String("abstracao", "media", "alta|media|baixa|nao_abstrai")
		med     = flag.String("mediacao", "guiado", "autonomo|guiado|passo_a_passo")
		dys     = flag.String("dislexia", "nao", "sim|nao")
		letter  = flag.String("tipo-letra", "normal", "bastao|normal")
		notes   = flag.String("notes", "", "teacher notes appended to the system prompt")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	p := entity.StudentProfile{
		ProfileName:  "cli",
		Fragmentacao: constants.Fragmentation(constants.NormalizeDimension(*frag)),
		Abstracao:    constants.Abstraction(constants.NormalizeDimension(*abst)),
		Mediacao:     constants.Mediation(constants.NormalizeDimension(*med)),
		Dislexia:     constants.Dyslexia(constants.NormalizeDimension(*dys)),
		TipoLetra:    constants.LetterStyle(constants.NormalizeDimension(*letter)),
	}
	vp, err := rules.Validate(p)
	if err != nil {
		logger.Error("invalid profile", "error", err)
		os.Exit(2)
	}
	system := llm.BuildSystemPrompt(rules.Synthesize(vp), *notes)

	if !*run {
		fmt.Println(system)
		return
	}
	if *input == "" {
		logger.Error("--in is required with --run")
		os.Exit(2)
	}
	text, err := os.ReadFile(*input)
	if err != nil {
		logger.Error("read input", "path", *input, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}
	client := openai.NewClient(openai.ConfigFromCommon(cfg.LLM), logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, "cli")

	res, err := client.Adapt(ctx, llm.AdaptRequest{
		SystemPrompt: system,
		UserText:     llm.BuildUserPrompt(string(text)),
		OriginalText: string(text),
	})
	if err != nil {
		logger.Error("adapt failed", "error", err)
		os.Exit(1)
	}
	logger.Info("adapt.done", "outcome", res.Outcome, "reason", res.Reason, "chars", len(res.Text))
	fmt.Println(res.Text)
}
