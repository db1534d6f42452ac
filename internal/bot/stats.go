package bot

import "sync/atomic"

// stats tracks lifetime counters for the status endpoint and /status.
type stats struct {
	filesReceived   atomic.Int64
	searchesRun     atomic.Int64
	postsPublished  atomic.Int64
	sessionsExpired atomic.Int64
	parseRequests   atomic.Int64
}
