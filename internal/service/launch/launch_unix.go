//go:build !windows

package launch

import (
	"context"
	"os"
	"os/exec"
)

// start launches the process with a literal argv. When elevation is
// requested and the current user is not root, the launch is wrapped in
// non-interactive sudo; arguments stay a vector, nothing is shell-quoted.
// The command is deliberately not bound to the context: the installer must
// outlive this tool and is never terminated by it.
func start(_ context.Context, spec Spec) (Handle, error) {
	var cmd *exec.Cmd

	if spec.Elevate && os.Geteuid() != 0 {
		args := append([]string{"-n", spec.Path}, spec.Args...)
		cmd = exec.Command("sudo", args...)
	} else {
		cmd = exec.Command(spec.Path, spec.Args...)
	}

	if err := cmd.Start(); err != nil {
		return Handle{}, err
	}

	pid := cmd.Process.Pid

	// Fire and forget: reap the child in the background so it does not
	// linger as a zombie if it exits before we do.
	go func() {
		_ = cmd.Wait()
	}()

	return Handle{PID: pid}, nil
}
