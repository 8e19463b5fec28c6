package runner

import "os/exec"

// IsAvailable reports whether the executable can be found on PATH. It never
// runs the tool and has no side effects.
func IsAvailable(executable string) bool {
	_, err := exec.LookPath(executable)
	return err == nil
}
