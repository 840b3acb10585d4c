package journal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level classifies a journal line for the operator.
type Level string

// Journal levels, spelled exactly as they appear in the log file.
const (
	LevelInfo    Level = "Info"
	LevelWarning Level = "Warning"
	LevelError   Level = "Error"
	LevelSuccess Level = "Success"
)

const (
	// timestampLayout is the timestamp format used in journal lines.
	timestampLayout = "2006-01-02 15:04:05"

	// maxFileSizeMB caps a single journal file before rotation.
	maxFileSizeMB = 10

	// maxBackups is how many rotated journal files are kept.
	maxBackups = 3
)

// Journal appends timestamped, leveled text lines for the operator.
// Lines look like:
//
//	[2026-08-24 10:15:03] [Warning] Attempt 1 failed: timeout
//
// A Journal is safe for concurrent use.
type Journal struct {
	// mu serializes writes so lines never interleave.
	mu sync.Mutex
	// out receives formatted lines.
	out io.Writer
	// now supplies timestamps; overridable in tests.
	now func() time.Time
	// closer closes the underlying sink, if it owns one.
	closer io.Closer
}

// New creates a journal appending to the file at path, with rotation.
func New(path string) *Journal {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxBackups,
	}

	return &Journal{
		out:    sink,
		now:    time.Now,
		closer: sink,
	}
}

// NewWithWriter creates a journal writing to the provided writer.
// A nil clock defaults to time.Now. Used by tests and the quiet mode.
func NewWithWriter(w io.Writer, clock func() time.Time) *Journal {
	if clock == nil {
		clock = time.Now
	}

	return &Journal{
		out: w,
		now: clock,
	}
}

// Close flushes and closes the underlying file, if any.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closer == nil {
		return nil
	}

	return j.closer.Close()
}

// Info writes an informational line.
func (j *Journal) Info(format string, args ...any) {
	j.write(LevelInfo, format, args...)
}

// Warning writes a warning line.
func (j *Journal) Warning(format string, args ...any) {
	j.write(LevelWarning, format, args...)
}

// Error writes an error line.
func (j *Journal) Error(format string, args ...any) {
	j.write(LevelError, format, args...)
}

// Success writes a success line.
func (j *Journal) Success(format string, args ...any) {
	j.write(LevelSuccess, format, args...)
}

// write formats and appends a single journal line.
// Sink errors are deliberately ignored: the journal is informational and
// must never abort the run.
func (j *Journal) write(level Level, format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.out == nil {
		return
	}

	timestamp := j.now().Format(timestampLayout)
	message := fmt.Sprintf(format, args...)

	//nolint:errcheck // A failing journal sink must not fail the run.
	fmt.Fprintf(j.out, "[%s] [%s] %s\n", timestamp, level, message)
}
