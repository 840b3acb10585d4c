// Package notifier shows a time-bounded, user-dismissible message while
// the launched installer proceeds in the background.
//
// The countdown itself is an explicit state machine driven by injected
// one-second ticks, fully testable without a timer or a display. The
// bubbletea presenter and the plain-text fallback are thin shells around
// it; neither can affect the exit code of the run.
package notifier
