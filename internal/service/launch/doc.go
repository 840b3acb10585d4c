// Package launch starts the downloaded installer as an independent child
// process. The launch is fire-and-forget: the tool records the process
// identifier for the run receipt and never waits on, reads from or
// terminates the child.
package launch
