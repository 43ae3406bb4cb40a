// Package archive packs page directories into zip archives and unpacks them,
// backing the notebook's backup and import operations.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Zip writes the directory tree at srcDir into the archive at destPath.
// Entries are prefixed with the base name of srcDir, so unpacking
// recreates the directory itself (pages/<name>/...).
func Zip(srcDir, destPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", destPath, err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating archive %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	root := filepath.Dir(srcDir)

	err = filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		return addFile(zw, path, name)
	})
	if err != nil {
		zw.Close()
		return "", fmt.Errorf("zipping %s: %w", srcDir, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalizing archive %s: %w", destPath, err)
	}
	return destPath, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Unzip extracts the archive at srcPath into destDir and returns destDir.
// Entries escaping destDir are rejected.
func Unzip(srcPath, destDir string) (string, error) {
	zr, err := zip.OpenReader(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", srcPath, err)
	}
	defer zr.Close()

	cleanDest := filepath.Clean(destDir)
	for _, f := range zr.File {
		target := filepath.Join(cleanDest, filepath.FromSlash(f.Name))
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return "", fmt.Errorf("archive entry %q escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return "", fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return destDir, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
