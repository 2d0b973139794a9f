// Package builder invokes the external image build tool
// and extracts the resulting image reference from its
// output document.
//
// The build contract: the command receives the environment
// variables PROJECT, REGISTRY_PROJECT, GIT_TAG, and OUTPUT,
// must write a document containing an "image" field to the
// OUTPUT path, and must exit non-zero on failure.
package builder

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/webapp_updater/updater/exec"
)

// Config holds the settings for running the build tool.
type Config struct {
	// Dir is the component directory the build command
	// runs in.
	Dir string

	// Command is the build command name. Defaults to
	// "make".
	Command string

	// Args are the command arguments. Defaults to
	// ["build-gcb"].
	Args []string

	// BuildProject is the project that runs the build.
	BuildProject string

	// RegistryProject is the project hosting the built
	// image.
	RegistryProject string

	// TmpDir is where the output document is written.
	// Defaults to the system temp directory.
	TmpDir string
}

// MakeBuilder runs the component's build target and reads
// the image reference the build publishes to the OUTPUT
// document.
type MakeBuilder struct {
	cfg Config
}

// New returns a MakeBuilder with defaults applied.
func New(cfg Config) *MakeBuilder {
	if cfg.Command == "" {
		cfg.Command = "make"
	}

	if len(cfg.Args) == 0 {
		cfg.Args = []string{"build-gcb"}
	}

	return &MakeBuilder{cfg: cfg}
}

// Build runs the build command tagged with commit and
// returns the image field of the output document. A build
// that exits zero without producing the document, or
// produces one without an image field, is an error.
func (b *MakeBuilder) Build(
	_ context.Context,
	commit string,
) (string, error) {
	const errCtx = "building image"

	outPath, err := outputPath(b.cfg.TmpDir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer os.Remove(outPath) //nolint:errcheck

	env := []string{
		"PROJECT=" + b.cfg.BuildProject,
		"REGISTRY_PROJECT=" + b.cfg.RegistryProject,
		"GIT_TAG=" + commit,
		"OUTPUT=" + outPath,
	}

	if _, err := exec.ExEnv(
		b.cfg.Dir, env, b.cfg.Command, b.cfg.Args...,
	); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	image, err := imageFromDocument(outPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return image, nil
}

// outputPath reserves a fresh unique file path for the
// build's output document.
func outputPath(dir string) (string, error) {
	const errCtx = "reserving output path"

	f, err := os.CreateTemp(dir, "build-output-*.yaml")
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	name := f.Name()

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return name, nil
}

// outputDocument mirrors the build tool's output file.
type outputDocument struct {
	Image string `json:"image" yaml:"image"`
}

// imageFromDocument reads the output document at path and
// returns its image field. Cloud Build wrappers emit
// either JSON or YAML, so both are accepted.
func imageFromDocument(path string) (string, error) {
	const errCtx = "reading build output"

	data, err := os.ReadFile(path) //nolint:gosec // path created by outputPath
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", fmt.Errorf(
			"%s: build wrote no document to %s",
			errCtx, path,
		)
	}

	var doc outputDocument

	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal([]byte(trimmed), &doc)
	} else {
		err = yaml.Unmarshal([]byte(trimmed), &doc)
	}

	if err != nil {
		return "", fmt.Errorf(
			"%s: parse %s: %w", errCtx, path, err,
		)
	}

	if doc.Image == "" {
		return "", fmt.Errorf(
			"%s: no image field in %s", errCtx, path,
		)
	}

	return doc.Image, nil
}
