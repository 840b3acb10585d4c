package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/silent-setup/internal/config"
)

// Receipt records the outcome of the last completed run: when it happened,
// what was downloaded and which process was started. It is informational
// only — the pipeline never branches on it.
type Receipt struct {
	// Timestamp is when the installer was launched.
	Timestamp time.Time `json:"timestamp"`
	// InstallerURL is the source the artifact came from.
	InstallerURL string `json:"installer_url"`
	// ArtifactPath is where the artifact was stored.
	ArtifactPath string `json:"artifact_path"`
	// ArtifactSize is the downloaded size in bytes.
	ArtifactSize int64 `json:"artifact_size"`
	// LaunchedPID is the process identifier of the started installer.
	LaunchedPID int `json:"launched_pid"`
	// ToolVersion is the version of this tool that performed the run.
	ToolVersion string `json:"tool_version"`
}

// Repository defines persistence operations for the run receipt.
type Repository interface {
	Load(ctx context.Context) (*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
}

// FileRepository persists the receipt to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when the receipt file does not exist yet.
var ErrNotFound = errors.New("receipt not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var receipt Receipt
	if err = json.Unmarshal(contents, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return &receipt, nil
}

// Save writes the receipt to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, receipt *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}
