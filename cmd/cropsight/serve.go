package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/model"
	"github.com/verdant-labs/cropsight/core/worker"
)

func runServe(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Run the long-lived classification worker: decrypt and verify the model once, emit READY, then answer line-delimited JSON requests from stdin on stdout with diagnostics on stderr.")
	}
	flagSet := flag.NewFlagSet("serve", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var containerPath string
	var keyPath string
	var workerID string
	flagSet.StringVar(&containerPath, "container", env.ContainerPath, "path to the encrypted model container")
	flagSet.StringVar(&keyPath, "key", env.KeyPath, "path to the model key file")
	flagSet.StringVar(&workerID, "worker-id", env.WorkerID, "worker identifier used in diagnostics")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "serve:", err)
		return exitInvalidInput
	}

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "serve: initialize logger:", err)
		return exitInternalFailure
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.New(config.Config{
		ContainerPath: containerPath,
		KeyPath:       keyPath,
		WorkerID:      workerID,
	}, worker.Options{
		Input:        os.Stdin,
		Protocol:     os.Stdout,
		Logger:       logger,
		Construct:    model.ConstructLinear,
		Preprocessor: model.ImagePreprocessor{Size: model.DefaultImageSize},
	})
	if err := w.Run(ctx); err != nil {
		return exitStartupFailed
	}
	return exitOK
}
