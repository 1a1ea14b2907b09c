// Package worker runs the long-lived classification loop: one model handle
// decrypted at startup, line-delimited JSON requests on the input channel,
// exactly one response line per request on the protocol channel, and all
// human-readable narration on a separate diagnostic logger.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verdant-labs/cropsight/core/classify"
	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/model"
	"github.com/verdant-labs/cropsight/core/secureload"
)

// Options carries the worker's collaborators. Input and Protocol are the
// two halves of the line protocol; the Logger is the diagnostic channel
// and must never share a stream with Protocol.
type Options struct {
	Input        io.Reader
	Protocol     io.Writer
	Logger       *zap.Logger
	Construct    model.Constructor
	Preprocessor model.Preprocessor
	Classes      []string
}

// Worker is the explicitly constructed state for one serving process: no
// package-level model, no lazy initialization.
type Worker struct {
	cfg      config.Config
	opts     Options
	pipeline classify.Pipeline
}

func New(cfg config.Config, opts Options) *Worker {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Classes) == 0 {
		opts.Classes = classify.DefaultClasses
	}
	return &Worker{cfg: cfg, opts: opts}
}

// Run drives the worker through its lifetime: load once, announce
// readiness, serve until the input is exhausted or ctx is cancelled.
// A non-nil error means startup failed before anything was written to the
// protocol channel; a clean stop returns nil.
func (w *Worker) Run(ctx context.Context) error {
	logger := w.opts.Logger.With(zap.String("worker_id", w.cfg.WorkerID))
	logger.Info("initializing worker",
		zap.String("container_path", w.cfg.ContainerPath))

	handle, report, err := secureload.Load(w.cfg.ContainerPath, w.cfg.KeyPath, w.opts.Construct)
	if err != nil {
		logger.Error("model load failed",
			zap.String("error_type", string(errors.CategoryOf(err))),
			zap.Error(err))
		return err
	}
	w.pipeline = classify.Pipeline{
		Model:        handle,
		Preprocessor: w.opts.Preprocessor,
		Classes:      w.opts.Classes,
	}

	protocol := bufio.NewWriter(w.opts.Protocol)
	if _, err := protocol.WriteString(ReadyMarker + "\n"); err != nil {
		return errors.Wrap(fmt.Errorf("write readiness marker: %w", err), errors.CategoryInternalFailure, "protocol_write_failed", true)
	}
	if err := protocol.Flush(); err != nil {
		return errors.Wrap(fmt.Errorf("flush readiness marker: %w", err), errors.CategoryInternalFailure, "protocol_write_failed", true)
	}
	logger.Info("worker ready",
		zap.String("model_name", handle.Name()),
		zap.String("model_version", handle.Version()),
		zap.String("artifact_fingerprint", report.Fingerprint))

	lines := make(chan []byte)
	go readLines(w.opts.Input, lines, logger)

	for {
		// A stop observed between requests always wins over pending input.
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal observed, stopping")
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			logger.Info("shutdown signal observed, stopping")
			return nil
		case line, ok := <-lines:
			if !ok {
				logger.Info("input exhausted, stopping")
				return nil
			}
			w.serveOne(protocol, logger, line)
		}
	}
}

// serveOne completes a single request/response exchange. It never returns
// an error: every failure becomes a failure response so the loop outlives
// any one request.
func (w *Worker) serveOne(protocol *bufio.Writer, logger *zap.Logger, line []byte) {
	requestID := uuid.NewString()
	started := time.Now()
	response := w.handle(line)
	w.writeResponse(protocol, logger, response)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(started)),
	}
	if response.Success {
		fields = append(fields,
			zap.String("predicted_class", response.Data.PredictedClass),
			zap.Float64("confidence", response.Data.Confidence))
		logger.Info("request complete", fields...)
		return
	}
	fields = append(fields,
		zap.String("error_type", response.ErrorType),
		zap.String("error", response.Error))
	logger.Warn("request failed", fields...)
}

func (w *Worker) handle(line []byte) (response Response) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err := errors.Wrap(fmt.Errorf("panic while handling request: %v", recovered), errors.CategoryInternalFailure, "request_panic", false)
			response = failureResponse(err)
		}
	}()

	request, err := parseRequest(line)
	if err != nil {
		return failureResponse(err)
	}
	if _, err := os.Stat(request.ImagePath); err != nil {
		return failureResponse(errors.Wrap(fmt.Errorf("image not found: %s", request.ImagePath), errors.CategoryUnreadableImage, "image_not_found", false))
	}
	result, err := w.pipeline.Classify(request.ImagePath)
	if err != nil {
		return failureResponse(err)
	}
	return successResponse(result)
}

// writeResponse emits exactly one newline-terminated line. The response is
// marshalled before any byte is written so a failed encode can never leave
// a partial line on the protocol channel.
func (w *Worker) writeResponse(protocol *bufio.Writer, logger *zap.Logger, response Response) {
	encoded, err := marshalResponse(response)
	if err != nil {
		logger.Error("response encode failed", zap.Error(err))
		encoded = []byte(fallbackResponseLine)
	}
	if _, err := protocol.Write(append(encoded, '\n')); err != nil {
		logger.Error("protocol write failed", zap.Error(err))
		return
	}
	if err := protocol.Flush(); err != nil {
		logger.Error("protocol flush failed", zap.Error(err))
	}
}

func readLines(input io.Reader, lines chan<- []byte, logger *zap.Logger) {
	defer close(lines)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines <- line
	}
	if err := scanner.Err(); err != nil {
		logger.Error("input read failed", zap.Error(err))
	}
}
