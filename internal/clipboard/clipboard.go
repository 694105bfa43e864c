// Package clipboard copies share text to the system clipboard.
package clipboard

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// linuxTools lists the copy commands tried on Linux, Wayland first when a
// Wayland session is detected.
func linuxTools() [][]string {
	tools := [][]string{
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		tools = append([][]string{{"wl-copy"}}, tools...)
	}
	return tools
}

// command picks the platform's clipboard writer, or nil when none is
// installed.
func command() *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbcopy")
	case "windows":
		return exec.Command("cmd", "/c", "clip")
	default:
		for _, tool := range linuxTools() {
			if _, err := exec.LookPath(tool[0]); err == nil {
				return exec.Command(tool[0], tool[1:]...)
			}
		}
		return nil
	}
}

// Write copies text to the system clipboard.
func Write(text string) error {
	cmd := command()
	if cmd == nil {
		return fmt.Errorf("no clipboard tool found")
	}
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", cmd.Path, err)
	}
	return nil
}

// Available reports whether a clipboard writer exists on this system.
func Available() bool {
	return command() != nil
}
