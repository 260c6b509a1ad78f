// File path: internal/report/write.go
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staged is a rendered output waiting in a temporary file beside its final
// path. Commit moves it into place; Discard removes it.
type Staged struct {
	Path     string
	tempPath string
}

// Stage renders into a temporary file beside path without touching path
// itself.
func Stage(path string, render func(io.Writer) error) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	tempPath := file.Name()
	cleanup := func() {
		_ = file.Close()
		_ = os.Remove(tempPath)
	}
	if err := render(file); err != nil {
		cleanup()
		return nil, fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := file.Sync(); err != nil {
		cleanup()
		return nil, fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	return &Staged{Path: path, tempPath: tempPath}, nil
}

// Commit renames the staged file into place and returns its absolute path.
// A failed commit removes the temporary file.
func (s *Staged) Commit() (string, error) {
	if err := os.Rename(s.tempPath, s.Path); err != nil {
		_ = os.Remove(s.tempPath)
		return "", fmt.Errorf("finalize %s: %w", filepath.Base(s.Path), err)
	}
	absPath, err := filepath.Abs(s.Path)
	if err != nil {
		return s.Path, nil
	}
	return absPath, nil
}

// Discard drops the staged file. It is safe after Commit.
func (s *Staged) Discard() {
	if s == nil {
		return
	}
	_ = os.Remove(s.tempPath)
}

// WriteFile renders into a temporary file beside path and renames it into
// place only after render succeeds, so a failed run never leaves a partial
// document behind.
func WriteFile(path string, render func(io.Writer) error) (string, error) {
	staged, err := Stage(path, render)
	if err != nil {
		return "", err
	}
	return staged.Commit()
}

// StageDOCX renders the document for a later Commit.
func StageDOCX(path string, doc *Document, style Style) (*Staged, error) {
	return Stage(path, func(w io.Writer) error {
		return WriteDOCX(w, doc, style)
	})
}

// StageMarkdown renders the Markdown form for a later Commit.
func StageMarkdown(path string, doc *Document) (*Staged, error) {
	return Stage(path, func(w io.Writer) error {
		return RenderMarkdown(w, doc, filepath.Dir(path))
	})
}
