package deps

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/archivist/internal/archive"
	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/metrics"
	"github.com/MrSnakeDoc/archivist/internal/store"
)

// Archivist is the import and listing surface the API handlers call.
// *archive.Importer implements it.
type Archivist interface {
	Import(ctx context.Context, scope domain.Scope, filename string, data []byte) (archive.Report, error)
	AddLink(ctx context.Context, scope domain.Scope, rawURL string) (domain.Link, error)
	AddNote(ctx context.Context, scope domain.Scope, text string) (domain.Note, error)
	Notes(ctx context.Context, scope domain.Scope) ([]domain.Note, error)
	Links(ctx context.Context, scope domain.Scope) ([]domain.Link, error)
	Archives(ctx context.Context, scope domain.Scope) ([]domain.Archive, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Archivist Archivist           // import pipeline and record listing
	Store     store.Store         // pinged by /readyz
	Metrics   *metrics.Metrics    // nil disables /metrics and request counters
	Validate  *validator.Validate // request body validation
	Providers func() int          // oEmbed providers loaded, reported by /readyz (optional)
	Breaker   func() string       // resolver breaker state, reported by /readyz (optional)

	RequestTimeout time.Duration // per-request timeout, imports included
	MaxUploadSize  int64         // max bytes for one archive upload

	AllowedHosts []string // Host headers allowed on /api and /reload
	AllowedCIDRS []string // IPs allowed on /readyz, /reload and /metrics
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // allowed CORS origins, empty = any

	RateLimitBurst   int           // per client IP
	RateLimitPerMin  int           // refill per client IP per minute
	RateLimitMaxIPs  int           // max tracked client IPs
	RateLimitSweep   time.Duration // bucket sweep interval
	RateLimitIdleTTL time.Duration // drop idle buckets after this

	ProvidersReloadTrigger chan struct{} // Channel to trigger a manual providers reload (nil if no providers file)
}
