// Package actions implements the GitHub Actions runtime conventions the
// deployer needs: INPUT_* environment lookups, the GITHUB_OUTPUT file
// protocol, and workflow error commands.
package actions

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// inputKey maps an input name to its environment variable: INPUT_ prefix,
// spaces to underscores, uppercased. Hyphens are preserved, matching the
// runner's own mapping.
func inputKey(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// LookupInput returns the trimmed value of a named input and whether the
// input was provided at all.
func LookupInput(name string) (string, bool) {
	v, ok := os.LookupEnv(inputKey(name))
	return strings.TrimSpace(v), ok
}

// GetInput returns the trimmed value of a named input, or "".
func GetInput(name string) string {
	v, _ := LookupInput(name)
	return v
}

// SetOutput appends a step output to the $GITHUB_OUTPUT file. Multiline
// values use the heredoc form with a random delimiter so values cannot
// terminate the block themselves. Outside a workflow (no GITHUB_OUTPUT) the
// output is printed to stdout instead.
func SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		fmt.Printf("%s=%s\n", name, value)
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.ContainsAny(value, "\r\n") {
		delim := "ghadelimiter_" + uuid.NewString()
		_, err = fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delim, value, delim)
	} else {
		_, err = fmt.Fprintf(f, "%s=%s\n", name, value)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Fail emits a workflow error command with the terminal failure message.
func Fail(msg string) {
	fmt.Printf("::error::%s\n", escapeData(msg))
}

// escapeData escapes a value for use in a workflow command.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
