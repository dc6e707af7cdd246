package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// MismatchError reports a payload whose SHA-256 differs from the pinned one.
type MismatchError struct {
	Got      string
	Expected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("sha256 checksum mismatch: expected %s, got %s", e.Expected, e.Got)
}

// ComputeChecksum returns the hex SHA-256 of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ComputeFileChecksum returns the hex SHA-256 of the file at filePath.
func ComputeFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", errors.Wrap(err, "failed to compute checksum")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum checks data against expectedHash and returns the computed
// digest. A mismatch is reported as *MismatchError.
func VerifyChecksum(data []byte, expectedHash string) (string, error) {
	computedHash := ComputeChecksum(data)

	// Compare case-insensitively
	if !strings.EqualFold(computedHash, expectedHash) {
		return computedHash, &MismatchError{
			Got:      computedHash,
			Expected: expectedHash,
		}
	}
	return computedHash, nil
}
