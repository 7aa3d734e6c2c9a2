package translation

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultShellCommand = "trans"

// ShellTranslator shells out to a translate-shell compatible command
type ShellTranslator struct {
	command string
}

// NewShellTranslator creates a translator around command, which must be in
// PATH. An empty command uses "trans".
func NewShellTranslator(command string) (*ShellTranslator, error) {
	if command == "" {
		command = defaultShellCommand
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("%s is not installed or not in PATH: %w", command, err)
	}
	return &ShellTranslator{command: command}, nil
}

// Translate translates text into targetLang
func (t *ShellTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	cmd := exec.CommandContext(ctx, t.command, "-brief", "-no-autocorrect", ":"+targetLang, text)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%s failed: %w\nOutput: %s", t.command, err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("%s failed: %w", t.command, err)
	}

	translation := strings.TrimSpace(string(output))
	if translation == "" {
		return "", ErrEmptyResult
	}
	return translation, nil
}

// ListLanguages asks the tool for its language codes
func (t *ShellTranslator) ListLanguages(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, t.command, "-list-codes").Output()
	if err != nil {
		return nil, fmt.Errorf("%s -list-codes failed: %w", t.command, err)
	}

	var codes []string
	for _, line := range strings.Split(string(output), "\n") {
		if code := strings.TrimSpace(line); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%s returned no language codes", t.command)
	}
	return codes, nil
}

// Name returns the backend name
func (t *ShellTranslator) Name() string {
	return BackendShell
}
