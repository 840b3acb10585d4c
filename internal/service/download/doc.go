// Package download fetches the installer artifact over HTTPS with a
// per-attempt timeout, validates the result and retries on failure with a
// fixed backoff.
//
// Validation is deliberately simple: the file must exist and be at least a
// configured number of bytes. A truncated payload or an error page saved as
// the executable fails validation and counts as a retriable failure, the
// same as a transport error.
package download
