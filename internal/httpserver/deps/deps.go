package deps

import (
	"time"

	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/scheduler"
	"github.com/MrSnakeDoc/favorg/internal/service"
)

// RunReporter exposes the outcome of the last scheduled validation.
type RunReporter interface {
	LastRun() *scheduler.RunInfo
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed to access the server
	AllowedCIDRS    []string         // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins     []string         // browser origins allowed to call the API
	Service         *service.Service // bookmark operations
	StoreKind       string           // sqlite | postgres | redis | memory
	Scheduler       RunReporter      // nil when no scheduler runs
	ValidateTrigger chan struct{}    // manual validation trigger (nil => validate synchronously only)
	MaxImportBytes  int64            // upload size limit
	RequestTimeout  time.Duration    // timeout for plain API calls
	BulkTimeout     time.Duration    // timeout for import/validate/duplicates
	RateLimitBurst  int              // bulk endpoints burst per IP
	RateLimitPerMin int              // bulk endpoints refill per IP per minute
}

// Now returns the current time, honoring TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
