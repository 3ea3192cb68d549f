package runner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/nomadicsynth/orp/pkg/models"
)

// packageArtifacts bundles every existing deliverable plus the captured
// logs into a single zip archive at a deterministic path inside the
// artifacts directory.
//
// Files are stored at their deliverable-relative path; directories are
// walked recursively and each contained file is stored at its path
// relative to workDir. The two fixed log files, when present, are always
// included at their bare filenames whether or not a deliverable names
// them. The entry set is a pure function of the deliverables and the
// presence of logs. A failed attempt leaves no partial archive behind.
func packageArtifacts(artifactsDir, experimentID string, deliverables []models.Deliverable, workDir string) (string, error) {
	archivePath := filepath.Join(artifactsDir, experimentID+"_artifacts.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	written := make(map[string]bool)

	for _, d := range deliverables {
		fullPath := filepath.Join(workDir, d.Path)
		info, err := os.Stat(fullPath)
		if err != nil {
			continue // missing deliverables are simply not packaged
		}

		if info.IsDir() {
			err = filepath.WalkDir(fullPath, func(path string, entry fs.DirEntry, err error) error {
				if err != nil || entry.IsDir() {
					return err
				}
				rel, err := filepath.Rel(workDir, path)
				if err != nil {
					return err
				}
				return addFile(w, written, path, filepath.ToSlash(rel))
			})
		} else {
			err = addFile(w, written, fullPath, filepath.ToSlash(d.Path))
		}
		if err != nil {
			w.Close()
			os.Remove(archivePath)
			return "", fmt.Errorf("package deliverable %s: %w", d.Type, err)
		}
	}

	for _, logName := range []string{StdoutFileName, StderrFileName} {
		logPath := filepath.Join(workDir, logName)
		if !pathExists(logPath) {
			continue
		}
		if err := addFile(w, written, logPath, logName); err != nil {
			w.Close()
			os.Remove(archivePath)
			return "", fmt.Errorf("package %s: %w", logName, err)
		}
	}

	if err := w.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("finalize archive: %w", err)
	}
	return archivePath, nil
}

// addFile writes one file into the archive under the given entry name,
// skipping names that were already written.
func addFile(w *zip.Writer, written map[string]bool, path, name string) error {
	if written[name] {
		return nil
	}
	written[name] = true

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

// ArchiveRef returns the archive-qualified locator for an entry, in the
// form "<archive_path>::<entry_name>".
func ArchiveRef(archivePath, entryName string) string {
	return archivePath + "::" + entryName
}
