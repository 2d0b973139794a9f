// Package params patches optional-parameter declarations
// in prototype configuration files. A declaration is a
// single line of the form
//
//	// @optionalParam <name> <type> <value> <description...>
//
// Only the value token is mutable. Every other line passes
// through untouched.
package params

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	marker    = "//"
	directive = "@optionalParam"

	// A declaration has at least marker, directive, name,
	// type, and value tokens.
	minTokens = 5
)

// ErrParamNotFound reports that a requested parameter
// matched no declaration line in the file.
var ErrParamNotFound = errors.New("parameter not found")

// Declaration is the parsed form of an optional-parameter
// line.
type Declaration struct {
	// Name is the parameter name.
	Name string

	// Type is the declared parameter type (e.g. "string").
	Type string

	// Value is the default value token.
	Value string

	// Description is the free-form remainder of the line.
	Description string
}

// ParseLine parses a single line into a Declaration.
// Returns false for lines with fewer than five tokens or
// whose first two tokens are not the marker pair; such
// lines are inert and pass through unchanged.
func ParseLine(line string) (Declaration, bool) {
	pieces := strings.Fields(line)

	if len(pieces) < minTokens {
		return Declaration{}, false
	}

	if pieces[0] != marker || pieces[1] != directive {
		return Declaration{}, false
	}

	return Declaration{
		Name:        pieces[2],
		Type:        pieces[3],
		Value:       pieces[4],
		Description: strings.Join(pieces[minTokens:], " "),
	}, true
}

// String renders the declaration as a config line. Tokens
// are rejoined with single spaces, so internal whitespace
// of the source line is normalized.
func (d Declaration) String() string {
	pieces := []string{
		marker, directive, d.Name, d.Type, d.Value,
	}

	if d.Description != "" {
		pieces = append(pieces, d.Description)
	}

	return strings.Join(pieces, " ")
}

// Replace rewrites the declarations named in values and
// returns the new lines together with the previous value
// of each rewritten parameter. Keys that match no line are
// simply absent from the returned map; callers must not
// assume presence.
func Replace(
	lines []string,
	values map[string]string,
) ([]string, map[string]string) {
	old := make(map[string]string)
	out := make([]string, len(lines))

	for i, line := range lines {
		out[i] = line

		decl, ok := ParseLine(line)
		if !ok {
			continue
		}

		val, ok := values[decl.Name]
		if !ok {
			continue
		}

		old[decl.Name] = decl.Value

		slog.Info(
			"changing param",
			"name", decl.Name,
			"from", decl.Value,
			"to", val,
		)

		decl.Value = val
		out[i] = decl.String()
	}

	return out, old
}

// UpdateFile patches the parameter file at path. It
// returns the previous value of every requested parameter
// and whether the file was rewritten.
//
// A requested parameter that matches no line yields
// ErrParamNotFound. When every parameter already holds its
// desired value the file is left untouched and changed is
// false. Writes go through a temp file in the same
// directory renamed over the original, so a crash never
// leaves a half-written file.
func UpdateFile(
	path string,
	values map[string]string,
) (map[string]string, bool, error) {
	const errCtx = "updating parameter file"

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flags
	if err != nil {
		return nil, false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	lines := strings.Split(string(data), "\n")

	newLines, old := Replace(lines, values)

	changed := false

	for name, val := range values {
		prev, ok := old[name]
		if !ok {
			return nil, false, fmt.Errorf(
				"%s: %q: %w",
				errCtx, name, ErrParamNotFound,
			)
		}

		if prev != val {
			changed = true
		}
	}

	if !changed {
		return old, false, nil
	}

	content := strings.Join(newLines, "\n")

	if err := writeFileAtomic(
		path, []byte(content),
	); err != nil {
		return nil, false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return old, true, nil
}

// writeFileAtomic writes data to a temp file next to path
// and renames it over the original.
func writeFileAtomic(path string, data []byte) error {
	const errCtx = "writing file atomically"

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(
		dir, filepath.Base(path)+".tmp",
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck,gosec
		os.Remove(tmpName) //nolint:errcheck,gosec

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
