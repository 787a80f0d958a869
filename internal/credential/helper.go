package credential

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Helper answers a credential query in the line-oriented key=value format
// used by git credential helpers.
type Helper interface {
	Fill(ctx context.Context, input string) (string, error)
}

// CommandHelper runs an external process, writes the query to its stdin and
// returns its stdout. Stderr is discarded.
type CommandHelper struct {
	Name string
	Args []string
}

// DefaultHelper queries whatever helpers git itself is configured with.
var DefaultHelper = CommandHelper{Name: "git", Args: []string{"credential", "fill"}}

// ParseCommand splits a helper command line on whitespace. An empty line
// yields DefaultHelper.
func ParseCommand(line string) CommandHelper {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return DefaultHelper
	}
	return CommandHelper{Name: fields[0], Args: fields[1:]}
}

// String returns the command line.
func (h CommandHelper) String() string {
	return strings.Join(append([]string{h.Name}, h.Args...), " ")
}

// Fill implements Helper.
func (h CommandHelper) Fill(ctx context.Context, input string) (string, error) {
	cmd := exec.CommandContext(ctx, h.Name, h.Args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = io.Discard
	// Never fall back to an interactive prompt on the controlling terminal.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GCM_INTERACTIVE=never")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running credential helper %s: %w", h.Name, err)
	}
	return stdout.String(), nil
}

// parseHelperOutput extracts username and password; later lines win.
func parseHelperOutput(out string) (username, password string, ok bool) {
	var haveUser, havePass bool
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if v, found := strings.CutPrefix(line, "username="); found {
			username, haveUser = v, true
		} else if v, found := strings.CutPrefix(line, "password="); found {
			password, havePass = v, true
		}
	}
	return username, password, haveUser && havePass
}
