package opener

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// Opener reveals a directory in the OS file browser.
type Opener struct {
	binaryPath string
}

// NewOpener picks the file-browser launcher for the current OS.
func NewOpener() *Opener {
	return &Opener{binaryPath: launcherFor(runtime.GOOS)}
}

func launcherFor(goos string) string {
	switch goos {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

// Open launches the file browser on dir.
func (o *Opener) Open(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.binaryPath, dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// explorer exits 1 even when the window opened.
		if o.binaryPath == "explorer" {
			if _, ok := err.(*exec.ExitError); ok {
				return nil
			}
		}
		return fmt.Errorf("%s failed: %w, stderr: %s", o.binaryPath, err, stderr.String())
	}
	return nil
}
