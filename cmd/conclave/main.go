// Command conclave loads an EngineConfig, builds a Session, and runs
// either a one-shot workflow or a multi-round deliberation against a
// task, printing the result as JSON.
//
// Usage:
//
//	conclave -config engine.yaml -task "..." -strategy majority
//	conclave -config engine.yaml -task "..." -deliberate -mode debate -max-rounds 4
//	echo "..." | conclave -config engine.yaml -deliberate
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cameron5906/conclave/config"
	"github.com/cameron5906/conclave/deliberation"
	"github.com/cameron5906/conclave/session"
	"github.com/cameron5906/conclave/termination"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to an EngineConfig YAML file (required)")
	task := flag.String("task", "", "task text; reads stdin if omitted")
	strategyTag := flag.String("strategy", "majority", "voting strategy tag for the workflow/synthesis step")
	deliberate := flag.Bool("deliberate", false, "run a multi-round deliberation instead of a single-shot workflow")
	mode := flag.String("mode", "round_robin", "deliberation round mode: round_robin, debate, moderated, free_form")
	maxRounds := flag.Int("max-rounds", 5, "deliberation termination bound on rounds")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "conclave: -config is required")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conclave: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	s, err := session.New(cfg, session.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to build session", zap.Error(err))
	}

	taskText := *task
	if taskText == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("failed to read task from stdin", zap.Error(err))
		}
		taskText = string(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var output interface{}
	if *deliberate {
		result, err := s.NewDeliberation().
			WithMode(deliberation.Mode(*mode)).
			WithTermination(termination.MaxRounds{N: *maxRounds}).
			WithVotingTag(*strategyTag).
			RunText(ctx, taskText)
		if err != nil {
			logger.Fatal("deliberation failed", zap.Error(err))
		}
		output = result
	} else {
		result, err := s.NewWorkflow().
			Parallel().
			WithVotingTag(*strategyTag).
			RunText(ctx, taskText)
		if err != nil {
			logger.Fatal("workflow failed", zap.Error(err))
		}
		output = result
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode result", zap.Error(err))
	}
	fmt.Println(string(encoded))
}
