package health

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"papertrader/internal/execution"
	"papertrader/internal/httputil"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsSource exposes fill-scheduler counters for diagnostics. A nil source
// reports zeros.
type StatsSource interface {
	Stats() execution.Stats
}

type Handler struct {
	pool        *pgxpool.Pool
	scheduler   StatsSource
	startedAt   time.Time
	authMode    string
	httpAddr    string
	internalTok string
}

func NewHandler(pool *pgxpool.Pool, scheduler StatsSource, startedAt time.Time, authMode, httpAddr, internalToken string) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{
		pool:        pool,
		scheduler:   scheduler,
		startedAt:   start,
		authMode:    strings.TrimSpace(authMode),
		httpAddr:    strings.TrimSpace(httpAddr),
		internalTok: strings.TrimSpace(internalToken),
	}
}

type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	UptimeSec   int64             `json:"uptime_sec"`
	Uptime      string            `json:"uptime"`
	App         appStats          `json:"app"`
	Scheduler   schedulerStats    `json:"scheduler"`
	Process     processStats      `json:"process"`
	Runtime     runtimeStats      `json:"runtime"`
	Database    databaseStats     `json:"database"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

type appStats struct {
	HTTPAddr string `json:"http_addr"`
	AuthMode string `json:"auth_mode"`
}

type schedulerStats struct {
	Sweeps      int64  `json:"sweeps"`
	Fills       int64  `json:"fills"`
	Skips       int64  `json:"skips"`
	LastSweepAt string `json:"last_sweep_at,omitempty"`
}

type processStats struct {
	PID      int    `json:"pid"`
	Hostname string `json:"hostname"`
	GoOS     string `json:"go_os"`
	GoArch   string `json:"go_arch"`
}

type runtimeStats struct {
	GoVersion      string `json:"go_version"`
	Goroutines     int    `json:"goroutines"`
	GoMaxProcs     int    `json:"gomaxprocs"`
	AllocBytes     uint64 `json:"alloc_bytes"`
	HeapInuseBytes uint64 `json:"heap_inuse_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

type databaseStats struct {
	Reachable  bool      `json:"reachable"`
	PingMs     int64     `json:"ping_ms"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  string    `json:"checked_at"`
	Pool       poolStats `json:"pool"`
	HasPool    bool      `json:"has_pool"`
	TimeoutSec int       `json:"timeout_sec"`
}

type poolStats struct {
	TotalConns        int32 `json:"total_conns"`
	IdleConns         int32 `json:"idle_conns"`
	AcquiredConns     int32 `json:"acquired_conns"`
	MaxConns          int32 `json:"max_conns"`
	AcquireCount      int64 `json:"acquire_count"`
	EmptyAcquireCount int64 `json:"empty_acquire_count"`
}

type liveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
	Uptime    string `json:"uptime"`
}

type readinessResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	UptimeSec int64           `json:"uptime_sec"`
	Uptime    string          `json:"uptime"`
	Database  readinessDBStat `json:"database"`
}

type readinessDBStat struct {
	Reachable  bool   `json:"reachable"`
	PingMs     int64  `json:"ping_ms"`
	Error      string `json:"error,omitempty"`
	CheckedAt  string `json:"checked_at"`
	TimeoutSec int    `json:"timeout_sec"`
}

func (h *Handler) uptime(now time.Time) time.Duration {
	uptime := now.Sub(h.startedAt)
	if uptime < 0 {
		return 0
	}
	return uptime
}

func (h *Handler) schedulerStats() schedulerStats {
	if h.scheduler == nil {
		return schedulerStats{}
	}
	s := h.scheduler.Stats()
	out := schedulerStats{Sweeps: s.Sweeps, Fills: s.Fills, Skips: s.Skips}
	if !s.LastSweep.IsZero() {
		out.LastSweepAt = s.LastSweep.Format(time.RFC3339)
	}
	return out
}

func secureTokenEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (h *Handler) requireInternalToken(w http.ResponseWriter, r *http.Request) bool {
	if h.internalTok == "" {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{Error: "internal token is not configured"})
		return false
	}
	provided := strings.TrimSpace(r.Header.Get("X-Internal-Token"))
	if !secureTokenEqual(provided, h.internalTok) {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid internal token"})
		return false
	}
	return true
}

func (h *Handler) collectDB(ctx context.Context, includePool bool) databaseStats {
	dbTimeoutSec := 1
	dbCheckedAt := time.Now().UTC()
	dbReachable := false
	dbError := ""
	pingMs := int64(0)
	poolSnapshot := poolStats{}

	if h.pool != nil {
		if includePool {
			stat := h.pool.Stat()
			poolSnapshot = poolStats{
				TotalConns:        stat.TotalConns(),
				IdleConns:         stat.IdleConns(),
				AcquiredConns:     stat.AcquiredConns(),
				MaxConns:          stat.MaxConns(),
				AcquireCount:      stat.AcquireCount(),
				EmptyAcquireCount: stat.EmptyAcquireCount(),
			}
		}
		pingStart := time.Now()
		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(dbTimeoutSec)*time.Second)
		pingErr := h.pool.Ping(pingCtx)
		cancel()
		pingMs = time.Since(pingStart).Milliseconds()
		dbCheckedAt = time.Now().UTC()
		if pingErr != nil {
			dbError = pingErr.Error()
		} else {
			dbReachable = true
		}
	} else {
		dbError = "pool is not configured"
	}

	return databaseStats{
		Reachable:  dbReachable,
		PingMs:     pingMs,
		Error:      dbError,
		CheckedAt:  dbCheckedAt.Format(time.RFC3339),
		Pool:       poolSnapshot,
		HasPool:    h.pool != nil,
		TimeoutSec: dbTimeoutSec,
	}
}

// Get keeps compatibility: /health is the readiness summary.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.Ready(w, r)
}

// Live is a lightweight liveness endpoint and touches no dependency.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	uptime := h.uptime(now)
	httputil.WriteJSON(w, http.StatusOK, liveResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
	})
}

// Ready checks the primary dependency (database) and returns 503 when it's
// not reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	uptime := h.uptime(now)
	db := h.collectDB(r.Context(), false)
	status := "ok"
	httpStatus := http.StatusOK
	if !db.Reachable {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, httpStatus, readinessResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
		Database: readinessDBStat{
			Reachable:  db.Reachable,
			PingMs:     db.PingMs,
			Error:      db.Error,
			CheckedAt:  db.CheckedAt,
			TimeoutSec: db.TimeoutSec,
		},
	})
}

// Full returns full diagnostics and is protected by X-Internal-Token.
func (h *Handler) Full(w http.ResponseWriter, r *http.Request) {
	if !h.requireInternalToken(w, r) {
		return
	}

	now := time.Now().UTC()
	uptime := h.uptime(now)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	db := h.collectDB(r.Context(), true)

	host := ""
	if name, err := os.Hostname(); err == nil {
		host = name
	}

	status := "ok"
	httpStatus := http.StatusOK
	diag := map[string]string{}
	if !db.Reachable {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		if db.Error != "" {
			diag["db_error"] = db.Error
		}
	}

	resp := healthResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
		App: appStats{
			HTTPAddr: h.httpAddr,
			AuthMode: h.authMode,
		},
		Scheduler: h.schedulerStats(),
		Process: processStats{
			PID:      os.Getpid(),
			Hostname: host,
			GoOS:     runtime.GOOS,
			GoArch:   runtime.GOARCH,
		},
		Runtime: runtimeStats{
			GoVersion:      runtime.Version(),
			Goroutines:     runtime.NumGoroutine(),
			GoMaxProcs:     runtime.GOMAXPROCS(0),
			AllocBytes:     mem.Alloc,
			HeapInuseBytes: mem.HeapInuse,
			SysBytes:       mem.Sys,
			NumGC:          mem.NumGC,
		},
		Database: db,
	}
	if len(diag) > 0 {
		resp.Diagnostics = diag
	}
	httputil.WriteJSON(w, httpStatus, resp)
}

// Metrics returns Prometheus text-format metrics and is protected by
// X-Internal-Token.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	if !h.requireInternalToken(w, r) {
		return
	}

	now := time.Now().UTC()
	uptime := h.uptime(now)
	db := h.collectDB(r.Context(), true)
	sched := h.schedulerStats()
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbUp := 0
	if db.Reachable {
		dbUp = 1
	}
	lastSweepUnix := int64(0)
	if h.scheduler != nil {
		if last := h.scheduler.Stats().LastSweep; !last.IsZero() {
			lastSweepUnix = last.Unix()
		}
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "# HELP papertrader_up Service process is running.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_up gauge\n")
	_, _ = fmt.Fprintf(w, "papertrader_up 1\n")

	_, _ = fmt.Fprintf(w, "# HELP papertrader_uptime_seconds Service uptime in seconds.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_uptime_seconds gauge\n")
	_, _ = fmt.Fprintf(w, "papertrader_uptime_seconds %d\n", int64(uptime.Seconds()))

	_, _ = fmt.Fprintf(w, "# HELP papertrader_db_up Database ping status (1=ok,0=down).\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_db_up gauge\n")
	_, _ = fmt.Fprintf(w, "papertrader_db_up %d\n", dbUp)
	_, _ = fmt.Fprintf(w, "papertrader_db_ping_milliseconds %d\n", db.PingMs)

	_, _ = fmt.Fprintf(w, "# HELP papertrader_sweeps_total Fill sweeps executed since start.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_sweeps_total counter\n")
	_, _ = fmt.Fprintf(w, "papertrader_sweeps_total %d\n", sched.Sweeps)
	_, _ = fmt.Fprintf(w, "# HELP papertrader_fills_total Orders filled since start.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_fills_total counter\n")
	_, _ = fmt.Fprintf(w, "papertrader_fills_total %d\n", sched.Fills)
	_, _ = fmt.Fprintf(w, "# HELP papertrader_skips_total Orders skipped during sweeps since start.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_skips_total counter\n")
	_, _ = fmt.Fprintf(w, "papertrader_skips_total %d\n", sched.Skips)
	_, _ = fmt.Fprintf(w, "papertrader_last_sweep_timestamp_seconds %d\n", lastSweepUnix)

	_, _ = fmt.Fprintf(w, "# HELP papertrader_go_goroutines Number of goroutines.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_go_goroutines gauge\n")
	_, _ = fmt.Fprintf(w, "papertrader_go_goroutines %d\n", runtime.NumGoroutine())
	_, _ = fmt.Fprintf(w, "papertrader_go_gomaxprocs %d\n", runtime.GOMAXPROCS(0))
	_, _ = fmt.Fprintf(w, "papertrader_go_mem_alloc_bytes %d\n", mem.Alloc)
	_, _ = fmt.Fprintf(w, "papertrader_go_mem_heap_inuse_bytes %d\n", mem.HeapInuse)
	_, _ = fmt.Fprintf(w, "papertrader_go_mem_sys_bytes %d\n", mem.Sys)
	_, _ = fmt.Fprintf(w, "papertrader_go_gc_count %d\n", mem.NumGC)

	_, _ = fmt.Fprintf(w, "# HELP papertrader_db_pool_total_conns Current total DB pool connections.\n")
	_, _ = fmt.Fprintf(w, "# TYPE papertrader_db_pool_total_conns gauge\n")
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_total_conns %d\n", db.Pool.TotalConns)
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_idle_conns %d\n", db.Pool.IdleConns)
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_acquired_conns %d\n", db.Pool.AcquiredConns)
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_max_conns %d\n", db.Pool.MaxConns)
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_acquire_count %d\n", db.Pool.AcquireCount)
	_, _ = fmt.Fprintf(w, "papertrader_db_pool_empty_acquire_count %d\n", db.Pool.EmptyAcquireCount)
}
