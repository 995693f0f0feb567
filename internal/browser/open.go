// Package browser hands URLs to the system browser.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Replaced in tests.
var (
	command   = exec.Command
	writeClip = clipboard.WriteAll
)

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = command("open", url)
	case "linux":
		cmd = command("xdg-open", url)
	case "windows":
		cmd = command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Outcome says how a URL reached the user.
type Outcome int

const (
	Opened Outcome = iota
	Copied
	Manual
)

// ErrNoBrowser is returned by Launch when neither the browser nor the
// clipboard could take the URL.
var ErrNoBrowser = errors.New("could not open a browser")

// Launch opens url, falling back to copying it to the clipboard. On Manual
// the caller must print the URL.
func Launch(url string) (Outcome, error) {
	openErr := Open(url)
	if openErr == nil {
		return Opened, nil
	}
	if err := writeClip(url); err == nil {
		return Copied, nil
	}
	return Manual, fmt.Errorf("%w: %v", ErrNoBrowser, openErr)
}
