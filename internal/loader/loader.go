// Package loader handles reading the assembly sources of the ROM banks.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
)

// bankMarker starts the source of a new bank in a combined source file,
// for example "; BANK 2".
var bankMarker = regexp.MustCompile(`^\s*;\s*BANK\s+(\d+)\s*$`)

// Loader handles loading bank source files from disk.
type Loader struct{}

// New creates a new source loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the input files. Every file contains the source of one bank in
// input order, unless a single file is given that contains bank markers.
func (l *Loader) Load(opts options.Program) ([]program.BankSection, error) {
	if len(opts.Inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	var sections []program.BankSection
	for i, input := range opts.Inputs {
		lines, err := readLines(input)
		if err != nil {
			return nil, err
		}

		if len(opts.Inputs) == 1 {
			split, err := splitBanks(input, lines)
			if err != nil {
				return nil, err
			}
			if split != nil {
				return split, nil
			}
		}

		sections = append(sections, program.BankSection{
			ID:    i,
			Name:  filepath.Base(input),
			Lines: lines,
		})
	}
	return sections, nil
}

// Read reads the lines of a source from a reader.
func Read(reader io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	lines, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return lines, nil
}

// splitBanks splits a combined source at its bank markers. It returns nil if
// the source contains no marker. Lines before the first marker belong to
// bank 0.
func splitBanks(path string, lines []string) ([]program.BankSection, error) {
	if !hasBankMarker(lines) {
		return nil, nil
	}

	var sections []program.BankSection
	seen := map[int]struct{}{}

	for number, line := range lines {
		match := bankMarker.FindStringSubmatch(line)
		if match == nil {
			if len(sections) == 0 {
				if strings.TrimSpace(line) == "" {
					continue
				}
				seen[0] = struct{}{}
				sections = append(sections, newSection(path, 0))
			}
			last := &sections[len(sections)-1]
			last.Lines = append(last.Lines, line)
			continue
		}

		id, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid bank number '%s'", path, number+1, match[1])
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%s:%d: bank %d defined twice", path, number+1, id)
		}
		seen[id] = struct{}{}
		sections = append(sections, newSection(path, id))
	}
	return sections, nil
}

func hasBankMarker(lines []string) bool {
	for _, line := range lines {
		if bankMarker.MatchString(line) {
			return true
		}
	}
	return false
}

func newSection(path string, id int) program.BankSection {
	return program.BankSection{
		ID:   id,
		Name: fmt.Sprintf("%s#%d", filepath.Base(path), id),
	}
}
