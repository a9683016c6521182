// Package fileManagement provides utilities for file and directory operations.
// This package handles copying files and directory trees into a bundle, creating
// directories idempotently, and finding external programs in the system PATH.
package fileManagement

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// CopyRecursive copies source to dest the way `cp -R` does: a regular file is
// copied as a file, a directory is copied as a whole tree and a symlink is
// recreated rather than followed. Missing parent directories of dest are created.
//
// Parameters:
//   - source: File, directory or symlink to copy
//   - dest: Destination path (the copy itself, not its parent directory)
//
// Returns an error if any file operation fails.
func CopyRecursive(source, dest string) error {
	// Lstat so that a symlink is not followed
	info, err := os.Lstat(source)
	if err != nil {
		return err
	}

	if err := CreateIfNotExists(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return CopySymLink(source, dest)
	case info.IsDir():
		if err := CreateIfNotExists(dest, info.Mode().Perm()|0o700); err != nil {
			return err
		}
		return CopyDirectory(source, dest)
	default:
		return Copy(source, dest)
	}
}

// CopyDirectory recursively copies a directory tree from source to destination.
// This function:
//   - Preserves file permissions
//   - Handles directories, regular files, and symlinks
//   - Maintains the directory structure
//
// The destination directory must already exist.
//
// Parameters:
//   - srcDir: Source directory to copy from
//   - dest: Destination directory to copy to
//
// Returns an error if any file operation fails.
func CopyDirectory(srcDir, dest string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		sourcePath := filepath.Join(srcDir, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		fileInfo, err := os.Lstat(sourcePath)
		if err != nil {
			return err
		}

		switch fileInfo.Mode() & os.ModeType {
		case os.ModeDir:
			if err := CreateIfNotExists(destPath, 0o755); err != nil {
				return err
			}
			if err := CopyDirectory(sourcePath, destPath); err != nil {
				return err
			}
		case os.ModeSymlink:
			// Symlinks keep their own permissions, nothing to chmod afterwards
			if err := CopySymLink(sourcePath, destPath); err != nil {
				return err
			}
			continue
		default:
			if err := Copy(sourcePath, destPath); err != nil {
				return err
			}
		}

		if err := os.Chmod(destPath, fileInfo.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

// Copy copies a single file from source to destination, truncating an existing
// destination. The destination receives the permission bits of the source.
//
// Parameters:
//   - srcFile: Path to the source file
//   - dstFile: Path to the destination file
//
// Returns an error if the copy operation fails.
func Copy(srcFile, dstFile string) error {
	in, err := os.Open(srcFile)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	// io.Copy handles the transfer in chunks, even for large files
	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}

// Exists checks if a file or directory exists at the given path.
// A dangling symlink counts as existing.
func Exists(filePath string) bool {
	if _, err := os.Lstat(filePath); os.IsNotExist(err) {
		return false
	}

	return true
}

// CreateIfNotExists creates a directory if it doesn't already exist.
// This is an idempotent operation - it's safe to call multiple times.
//
// Parameters:
//   - dir: Directory path to create
//   - perm: File permissions (e.g., 0755)
//
// Returns an error if directory creation fails.
func CreateIfNotExists(dir string, perm os.FileMode) error {
	if Exists(dir) {
		return nil
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	return nil
}

// CopySymLink copies a symlink by reading its target and creating a new symlink.
// This preserves the symlink itself, not the file it points to. An existing
// destination is replaced.
func CopySymLink(source, dest string) error {
	link, err := os.Readlink(source)
	if err != nil {
		return err
	}
	if Exists(dest) {
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	return os.Symlink(link, dest)
}

// FindProgramPath locates an executable program in the system PATH.
// Absolute or relative paths containing a separator are checked directly.
//
// Parameters:
//   - program: Name of the program to find (e.g., "cc", "ibtool")
//
// Returns:
//   - Full path to the executable
//   - An error if the program is not found
func FindProgramPath(program string) (string, error) {
	path, err := exec.LookPath(program)
	if err != nil {
		return "", fmt.Errorf("program %q not found in PATH: %w", program, err)
	}
	return path, nil
}
