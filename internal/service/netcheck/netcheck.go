package netcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/oshokin/silent-setup/internal/logger"
)

// DefaultProbeURL is a well-known, highly available endpoint that answers
// HEAD requests cheaply.
const DefaultProbeURL = "https://www.gstatic.com/generate_204"

// DefaultTimeout bounds the reachability probe.
const DefaultTimeout = 10 * time.Second

// Probe issues a single HEAD request to the provided URL and reports
// reachability. Any transport error means "unreachable"; nothing escalates
// past this boundary. A response with any status code proves the network
// path works — server-side failures are the downloader's business.
func Probe(ctx context.Context, probeURL string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, http.NoBody)
	if err != nil {
		logger.WarnKV(ctx, "Invalid probe URL", "url", probeURL, "error", err)
		return false
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.WarnKV(ctx, "Connectivity probe failed", "url", probeURL, "error", err)
		return false
	}

	_ = response.Body.Close()

	return true
}
