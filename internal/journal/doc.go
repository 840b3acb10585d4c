// Package journal writes the operator-facing run log.
//
// Unlike the diagnostic logger, the journal has a fixed, human-oriented
// line format and a Success level, and it is appended to a rotating file
// next to the working directory so operators can audit unattended runs.
package journal
