package util

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/pkg/errors"
)

// Data is a generic map type for template rendering context.
type Data map[string]interface{}

// Render executes the given template with the provided variables.
func Render(tmpl *template.Template, variables Data) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", errors.Wrap(err, "failed to render template")
	}
	return buf.String(), nil
}

// RenderString parses and executes the given template string with the provided variables.
// Missing keys render as errors so a typo in a command template never reaches the shell.
func RenderString(tmplStr string, variables Data) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template string")
	}
	return Render(tmpl, variables)
}

var (
	homeDir     string
	homeDirErr  error
	homeDirOnce sync.Once
)

// Home returns the home directory for the current user.
// It caches the result for subsequent calls.
func Home() (string, error) {
	homeDirOnce.Do(func() {
		if home := os.Getenv("HOME"); home != "" {
			homeDir = home
			return
		}
		u, err := user.Current()
		if err != nil {
			homeDirErr = errors.Wrap(err, "failed to look up current user")
			return
		}
		if u.HomeDir == "" {
			homeDirErr = errors.New("current user has no home directory")
			return
		}
		homeDir = u.HomeDir
	})
	return homeDir, homeDirErr
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ShellQuote wraps s in double quotes, escaping embedded double quotes.
func ShellQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// ToString renders a parameter value the way it appears in workspace files.
// nil renders as the empty string.
func ToString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ContainsString checks if a string is present in a slice of strings.
func ContainsString(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// Duplicates returns the values that occur more than once in slice, in first-seen order.
func Duplicates(slice []string) []string {
	seen := make(map[string]int, len(slice))
	var dups []string
	for _, s := range slice {
		seen[s]++
		if seen[s] == 2 {
			dups = append(dups, s)
		}
	}
	return dups
}

// FirstNonEmpty returns the first non-empty string from a list of strings.
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
