package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape indicates the resolved path would escape the results directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ResolveResultPath joins the provided elements under the results directory
// and ensures the resulting path never traverses outside of it. Scan result
// filenames include the target host, so this guards against hostile hostnames
// smuggling ".." segments into writes. The returned path is absolute.
func ResolveResultPath(resultsDir string, elems ...string) (string, error) {
	if resultsDir == "" {
		return "", errors.New("results directory is required")
	}

	base, err := filepath.Abs(resultsDir)
	if err != nil {
		return "", fmt.Errorf("resolve results dir: %w", err)
	}

	target, err := filepath.Abs(filepath.Join(append([]string{base}, elems...)...))
	if err != nil {
		return "", fmt.Errorf("resolve target path: %w", err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("relativize path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, target)
	}

	return target, nil
}
