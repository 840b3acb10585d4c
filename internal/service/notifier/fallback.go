package notifier

import (
	"fmt"
	"io"
	"time"
)

// Fallback prints a single plain-text notification line when the
// interactive presentation is unavailable. It does not block and does not
// count down; it exists so headless hosts still get the message.
func Fallback(w io.Writer, message string, total time.Duration) error {
	_, err := fmt.Fprintf(w, "%s (the installer keeps running for up to %s in the background)\n",
		message, total.Round(time.Minute))

	return err
}
