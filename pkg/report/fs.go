// pkg/report/fs.go

package report

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	spkPattern           = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)
)

// SanitizeFilename strips characters that are invalid in filenames and
// replaces spaces with underscores.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, " ", "_")
}

// ValidSPK reports whether a service-package name is acceptable: 3-50
// characters of letters, digits, underscores, and hyphens.
func ValidSPK(name string) bool {
	return spkPattern.MatchString(name)
}

// EnsureOutputDir creates the output directory if needed and verifies it is
// writable with a probe file.
func EnsureOutputDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", cerr.Wrapf(err, "create output directory %s", dir)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return "", cerr.Wrapf(err, "output directory %s is not writable", dir)
	}
	if err := os.Remove(probe); err != nil {
		return "", cerr.Wrapf(err, "clean up write probe in %s", dir)
	}
	return dir, nil
}
