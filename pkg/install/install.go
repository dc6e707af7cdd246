package install

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMode is the permission a freshly written file starts from before
// the execute bit is added.
const DefaultMode os.FileMode = 0644

// OwnerExec is the owner-execute permission bit.
const OwnerExec os.FileMode = 0100

// ResolveDir resolves the directory the tool is written to.
// An empty dir means the current working directory.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	// Expand path (handles ~ and environment variables)
	dir = expandPath(dir)

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve install directory")
	}

	return absPath, nil
}

// ExecutableMode returns the mode to apply to path: its current permission
// bits (DefaultMode when it does not exist) plus OwnerExec.
func ExecutableMode(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMode | OwnerExec, nil
		}
		return 0, errors.Wrap(err, "failed to stat existing file")
	}
	return info.Mode().Perm() | OwnerExec, nil
}

// WriteExecutable writes data to targetPath and sets the owner-execute bit,
// keeping the other permission bits of any file it replaces.
func WriteExecutable(targetPath string, data []byte) error {
	targetDir := filepath.Dir(targetPath)
	targetName := filepath.Base(targetPath)

	mode, err := ExecutableMode(targetPath)
	if err != nil {
		return err
	}

	// Create temporary file in target directory for atomic replacement
	tmpFile, err := os.CreateTemp(targetDir, "."+targetName+"-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()

	// Clean up on error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "failed to write file")
	}

	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "failed to set permissions")
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}

	if err := atomicInstall(tmpPath, targetPath); err != nil {
		return err
	}

	success = true
	return nil
}

// atomicInstall performs an atomic file replacement
func atomicInstall(sourcePath, targetPath string) error {
	// On Unix, rename is atomic
	if err := os.Rename(sourcePath, targetPath); err != nil {
		// On Windows or cross-device, fall back to remove + rename
		if runtime.GOOS == "windows" || os.IsExist(err) {
			if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, "failed to remove existing file")
			}
			if err := os.Rename(sourcePath, targetPath); err != nil {
				return errors.Wrap(err, "failed to install file")
			}
		} else {
			return errors.Wrap(err, "failed to install file")
		}
	}
	return nil
}

// expandPath expands ~ and environment variables in a path
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home := os.Getenv("HOME"); home != "" {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
