package download

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/silent-setup/internal/journal"
	"github.com/oshokin/silent-setup/internal/logger"

	// Ensure SHA512 is available for checksum verification.
	_ "crypto/sha512"
)

// Target describes one artifact acquisition. It is immutable for the
// lifetime of a run.
type Target struct {
	// URL is the source of the artifact.
	URL string
	// Path is the final destination of the validated artifact.
	Path string
	// Timeout bounds a single download attempt.
	Timeout time.Duration
	// MinSize is the minimum acceptable artifact size in bytes. A payload
	// below this threshold is treated as a failed attempt: an HTML error
	// page saved as the executable is the dominant failure mode of
	// single-URL redirect downloads.
	MinSize int64
	// Checksum is an optional SHA-512 checksum enforced while the artifact
	// is moved into place.
	Checksum []byte
}

// Policy bounds the retry loop of the downloader.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff is the fixed delay between failed attempts.
	Backoff time.Duration
}

const (
	// partialSuffix marks an in-flight download next to the destination.
	partialSuffix = ".partial"

	// artifactFileMode is applied to the installed artifact.
	artifactFileMode os.FileMode = 0o755

	// checksumFunction verifies the artifact when a checksum is configured.
	checksumFunction = crypto.SHA512
)

var (
	// ErrRetriesExhausted is returned when every attempt of the policy failed.
	ErrRetriesExhausted = errors.New("download retries exhausted")

	// errBadHTTPStatus is returned when the server answers with a non-200 status.
	errBadHTTPStatus = errors.New("unexpected http status")

	// errPayloadTooSmall is returned when the payload fails size validation.
	errPayloadTooSmall = errors.New("payload smaller than minimum acceptable size")
)

// Fetcher downloads a remote artifact to a local path with per-attempt
// timeout, size validation and bounded retry.
type Fetcher struct {
	// client issues the requests. Per-attempt deadlines come from the
	// target, so the client itself carries no timeout.
	client *http.Client
	// journal receives operator-facing attempt reports; may be nil.
	journal *journal.Journal
}

// NewFetcher creates a fetcher. A nil client falls back to a plain client
// without a global timeout; a nil journal disables operator reporting.
func NewFetcher(client *http.Client, j *journal.Journal) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}

	return &Fetcher{
		client:  client,
		journal: j,
	}
}

// Fetch acquires the target, retrying per the policy. Attempts are strictly
// sequential; the first attempt that passes both transport and validation
// short-circuits the rest. After the policy is exhausted the last error is
// wrapped into ErrRetriesExhausted.
func (f *Fetcher) Fetch(ctx context.Context, target Target, policy Policy) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0

	operation := func() error {
		attempt++

		size, err := f.fetchOnce(ctx, target)
		if err != nil {
			logger.WarnKV(ctx, "Download attempt failed",
				"attempt", attempt, "max_attempts", maxAttempts, "error", err)
			f.warning("Attempt %d of %d failed: %v", attempt, maxAttempts, err)

			return err
		}

		logger.InfoKV(ctx, "Artifact downloaded",
			"attempt", attempt, "size_bytes", size, "path", target.Path)
		f.success("Installer downloaded on attempt %d (%d bytes)", attempt, size)

		return nil
	}

	policyBackoff := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(policy.Backoff),
			uint64(maxAttempts-1),
		),
		ctx,
	)

	if err := backoff.Retry(operation, policyBackoff); err != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}

	return nil
}

// fetchOnce performs a single bounded attempt: stream the payload into a
// partial file, validate its size, then move it into place atomically.
// Returns the payload size on success.
func (f *Fetcher) fetchOnce(ctx context.Context, target Target) (int64, error) {
	if target.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, target.Timeout)
		defer cancel()
	}

	partialPath := target.Path + partialSuffix

	size, err := f.streamToFile(ctx, target.URL, partialPath)
	if err != nil {
		_ = os.Remove(partialPath)

		return 0, err
	}

	if size < target.MinSize {
		_ = os.Remove(partialPath)

		return 0, fmt.Errorf("%w: %d bytes, need at least %d", errPayloadTooSmall, size, target.MinSize)
	}

	if err = materialize(partialPath, target.Path, target.Checksum); err != nil {
		_ = os.Remove(partialPath)

		return 0, fmt.Errorf("apply artifact: %w", err)
	}

	_ = os.Remove(partialPath)

	return size, nil
}

// streamToFile downloads the URL body into the provided path and reports
// the number of bytes written.
func (f *Fetcher) streamToFile(ctx context.Context, sourceURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		return 0, err
	}

	response, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s, %s: %w", sourceURL, response.Status, errBadHTTPStatus)
	}

	outputFile, err := os.Create(filepath.Clean(path))
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(outputFile, response.Body)
	if err != nil {
		_ = outputFile.Close()

		return 0, err
	}

	if err = outputFile.Close(); err != nil {
		return 0, err
	}

	return size, nil
}

// materialize moves the validated payload into the destination path using
// an atomic replace. The optional checksum is enforced during the apply.
func materialize(sourcePath, destinationPath string, checksum []byte) error {
	payload, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}

	defer func() {
		_ = payload.Close()
	}()

	// The apply step replaces an existing file, so make sure one exists.
	if _, err = os.Stat(destinationPath); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(filepath.Clean(destinationPath)); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: destinationPath,
		TargetMode: artifactFileMode,
		Checksum:   checksum,
		Hash:       checksumFunction,
	}

	if err = goupdate.Apply(payload, options); err != nil {
		return err
	}

	oldPath := destinationPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// warning writes an operator-facing warning line, if a journal is attached.
func (f *Fetcher) warning(format string, args ...any) {
	if f.journal != nil {
		f.journal.Warning(format, args...)
	}
}

// success writes an operator-facing success line, if a journal is attached.
func (f *Fetcher) success(format string, args ...any) {
	if f.journal != nil {
		f.journal.Success(format, args...)
	}
}
