//go:build windows

package launch

import (
	"context"
	"os/exec"
)

// start launches the process with a literal argv. The pipeline is gated on
// an elevation check before anything runs, so the child inherits the
// elevated token; no separate elevation verb is needed.
// The command is deliberately not bound to the context: the installer must
// outlive this tool and is never terminated by it.
func start(_ context.Context, spec Spec) (Handle, error) {
	cmd := exec.Command(spec.Path, spec.Args...)

	if err := cmd.Start(); err != nil {
		return Handle{}, err
	}

	pid := cmd.Process.Pid

	go func() {
		_ = cmd.Wait()
	}()

	return Handle{PID: pid}, nil
}
