package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// LookupError records why each resolution step failed for a command name
type LookupError struct {
	Name string
	// SearchErr is the failure from the $PATH search
	SearchErr error
	// RelativeErr is the failure from the working directory lookup
	RelativeErr error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("cannot resolve %q: search path: %v; working directory: %v", e.Name, e.SearchErr, e.RelativeErr)
}

// ResolveCommand finds an executable for name, first as a bare command on the
// search path and then as a path relative to the current working directory.
func ResolveCommand(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty command name")
	}
	path, searchErr := ResolveBinary(name)
	if searchErr == nil {
		return path, nil
	}
	path, relErr := ResolveRelative(name)
	if relErr == nil {
		return path, nil
	}
	return "", &LookupError{Name: name, SearchErr: searchErr, RelativeErr: relErr}
}

// ResolveBinary finds a binary name along the path
func ResolveBinary(binname string) (string, error) {
	binaryPath, err := exec.LookPath(binname)
	if err != nil {
		return "", err
	}
	return binaryPath, nil
}

// ResolveRelative resolves name against the current working directory and
// verifies it names an executable regular file
func ResolveRelative(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", errors.Errorf("%s is not a regular file", path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", errors.Errorf("%s is not executable", path)
	}
	return path, nil
}
