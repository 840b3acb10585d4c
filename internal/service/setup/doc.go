// Package setup sequences the unattended installation pipeline.
//
// The order is strict and data flows only forward: privilege gate,
// connectivity probe, workspace preparation, bounded-retry download,
// privileged launch, countdown notification. Every fatal condition is
// journaled before the process exits non-zero; recoverable conditions are
// journaled as warnings and the run continues.
package setup
