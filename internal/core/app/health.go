package app

import (
	"annotcheck/internal/shared/util"
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Components["context"] = err.Error()
		return status
	}

	if s.app.Parser != nil {
		status.Components["parser"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	}

	s.app.filesMu.RLock()
	files := len(s.app.files)
	s.app.filesMu.RUnlock()
	status.Components["index"] = fmt.Sprintf("ok (%d files, %d classes)", files, s.app.Index.Len())

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.History.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	if s.app.activeWatcher != nil {
		status.Components["watcher"] = "ok"
	}

	status.Components["memory"] = fmt.Sprintf("%d MB heap", util.GetHeapAllocMB())

	last := s.app.LastResult()
	if !last.FinishedAt.IsZero() {
		status.Components["last_scan"] = fmt.Sprintf("%s (%d diagnostics)", last.FinishedAt.Format(time.RFC3339), len(last.Diagnostics))
	}
	return status
}
