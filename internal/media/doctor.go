package media

import (
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

const doctorCacheTTL = 5 * time.Minute

// Capabilities reports which external media tools are on PATH.
type Capabilities struct {
	HasFFprobe bool      `json:"has_ffprobe"`
	HasFFmpeg  bool      `json:"has_ffmpeg"`
	ProbedAt   time.Time `json:"probed_at"`
}

// Doctor checks tool availability and caches the result. Lookups hit the
// filesystem, so the cache keeps /status cheap.
type Doctor struct {
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cached *Capabilities
}

func NewDoctor(logger *slog.Logger) *Doctor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Doctor{ttl: doctorCacheTTL, logger: logger}
}

// Get returns cached capabilities if fresh, otherwise re-probes.
func (d *Doctor) Get() *Capabilities {
	d.mu.RLock()
	if d.cached != nil && time.Since(d.cached.ProbedAt) < d.ttl {
		caps := d.cached
		d.mu.RUnlock()
		return caps
	}
	d.mu.RUnlock()

	return d.Refresh()
}

// Refresh probes PATH regardless of cache freshness.
func (d *Doctor) Refresh() *Capabilities {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps := &Capabilities{ProbedAt: time.Now()}
	if _, err := exec.LookPath("ffprobe"); err == nil {
		caps.HasFFprobe = true
	}
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		caps.HasFFmpeg = true
	}

	d.logger.Debug("media tool probe",
		"ffprobe", caps.HasFFprobe,
		"ffmpeg", caps.HasFFmpeg,
	)
	d.cached = caps
	return caps
}

// Invalidate clears the cached capabilities.
func (d *Doctor) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}
