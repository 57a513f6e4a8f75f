package consts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/vecasm/internal/options"
)

// SearchPaths returns the directories that are searched for include files in
// order: the include directory override (or the working directory), the
// project include folder, the IDE asset folder and the same set one and two
// directories above the base directory.
func SearchPaths(opts options.Assembler) []string {
	override := opts.IncludeDir
	if override == "" {
		if wd, err := os.Getwd(); err == nil {
			override = wd
		} else {
			override = "."
		}
	}

	base := opts.BaseDir
	if base == "" {
		base = "."
	}

	paths := []string{override}
	for _, dir := range []string{base, filepath.Join(base, ".."), filepath.Join(base, "..", "..")} {
		paths = append(paths,
			filepath.Join(dir, "include"),
			filepath.Join(dir, "ide", "assets", "include"),
		)
	}
	return paths
}

// FindInclude returns the first existing candidate for the include file name.
func FindInclude(opts options.Assembler, name string) (string, bool, error) {
	if filepath.IsAbs(name) {
		ok, err := fileExists(name)
		return name, ok, err
	}

	for _, dir := range SearchPaths(opts) {
		path := filepath.Join(dir, name)
		ok, err := fileExists(path)
		if err != nil {
			return "", false, err
		}
		if ok {
			return path, true, nil
		}
	}
	return "", false, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking include file '%s': %w", path, err)
	}
	return !info.IsDir(), nil
}
