package file

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mensylisir/xmetl/common"
)

// PathExists checks if a path exists.
// A "not exist" error is reported as (false, nil); any other stat error is returned.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateDir creates a directory and all its parents if they don't exist.
func CreateDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("path %s exists but is not a directory", path)
	}
	if os.IsNotExist(err) {
		return os.MkdirAll(path, common.FileMode0755)
	}
	return fmt.Errorf("failed to check directory %s: %w", path, err)
}

// CreateFileDir ensures the parent directory of filePath exists.
func CreateFileDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	return CreateDir(dir)
}

// WriteFile writes content to a file, creating parent directories if necessary.
// The file is truncated first; no atomic rename is attempted.
func WriteFile(filePath string, content []byte) error {
	if err := CreateFileDir(filePath); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", filePath, err)
	}
	if err := os.WriteFile(filePath, content, common.FileMode0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// WriteLines writes each line followed by a newline.
func WriteLines(filePath string, lines []string) error {
	if err := CreateFileDir(filePath); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", filePath, err)
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, common.FileMode0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to write file %s: %w", filePath, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush file %s: %w", filePath, err)
	}
	return f.Close()
}

// EmptyDir removes everything inside dir but keeps dir itself.
// A missing dir is not an error.
func EmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", filepath.Join(dir, e.Name()), err)
		}
	}
	return nil
}

// Tar writes srcDir as a gzipped tarball to dstTarball.
// Entry names are relative to srcDir.
func Tar(srcDir, dstTarball string) error {
	if err := CreateFileDir(dstTarball); err != nil {
		return err
	}
	fw, err := os.Create(dstTarball)
	if err != nil {
		return fmt.Errorf("failed to create tarball %s: %w", dstTarball, err)
	}
	defer fw.Close()

	gw := gzip.NewWriter(fw)
	tw := tar.NewWriter(gw)

	absDst, _ := filepath.Abs(dstTarball)
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if abs, _ := filepath.Abs(path); abs == absDst {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to build tar header for %s: %w", path, err)
		}
		hdr.Name = strings.ReplaceAll(rel, string(os.PathSeparator), "/")
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("failed to add %s to tarball: %w", path, err)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, walkErr)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tarball %s: %w", dstTarball, err)
	}
	return gw.Close()
}
