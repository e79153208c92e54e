package app

import (
	"annotcheck/internal/data/history"
	"annotcheck/internal/data/queue"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

const (
	runQueueCapacity = 64
	runBatchSize     = 16
	runBatchWait     = time.Second
)

// startRecorder drains queued runs into the history store until the queue is
// closed.
func (a *App) startRecorder() {
	a.runQueue = queue.NewMemoryQueue[history.Run](runQueueCapacity)
	a.recorderDone = make(chan struct{})
	go func() {
		defer close(a.recorderDone)
		for {
			batch, err := a.runQueue.DequeueBatch(context.Background(), runBatchSize, runBatchWait)
			for _, run := range batch {
				if _, saveErr := a.history.SaveRun(a.Config.History.ProjectKey, run); saveErr != nil {
					slog.Warn("failed to record run", "error", saveErr)
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
		}
	}()
}

// EnqueueRun records res in the background. It reports false when history is
// disabled or the queue is full.
func (a *App) EnqueueRun(res Result) bool {
	if a.runQueue == nil {
		return false
	}
	if a.runQueue.Enqueue(runFromResult(res)) != queue.EnqueueAccepted {
		slog.Warn("history queue full, dropping run", "diagnostics", len(res.Diagnostics))
		return false
	}
	return true
}

func (a *App) stopRecorder() {
	if a.runQueue == nil {
		return
	}
	_ = a.runQueue.Close()
	<-a.recorderDone
}

func runFromResult(res Result) history.Run {
	return history.Run{
		Timestamp:       res.FinishedAt,
		FileCount:       res.Files,
		TagCount:        res.Stats.Tags,
		CheckedCount:    res.Stats.Checked,
		FailedCount:     res.Stats.Failed,
		DiagnosticCount: len(res.Diagnostics),
		DurationMillis:  res.Duration.Milliseconds(),
	}
}
