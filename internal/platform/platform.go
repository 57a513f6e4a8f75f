// Package platform provides the Vectrex system symbol table that is preloaded
// into every assembler run.
package platform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/symbols"
)

// DescriptorName is the file name of the platform descriptor.
const DescriptorName = "VECTREX.I"

// descriptorCandidates are probed relative to the project base directory.
var descriptorCandidates = []string{
	filepath.Join("include", DescriptorName),
	filepath.Join("assets", "include", DescriptorName),
	filepath.Join("ide", "assets", "include", DescriptorName),
	filepath.Join("..", "include", DescriptorName),
	filepath.Join("..", "..", "include", DescriptorName),
}

// Table is the loaded platform symbol table.
type Table struct {
	Symbols  *symbols.Table
	Source   string // path of the descriptor, empty if the built-in table is used
	Fallback bool
}

// Load loads the platform descriptor by probing the candidate paths relative
// to baseDir. If none exists, the built-in table is returned and a warning is
// logged.
func Load(logger *log.Logger, baseDir string) (*Table, error) {
	for _, candidate := range descriptorCandidates {
		path := filepath.Join(baseDir, candidate)
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("opening platform descriptor '%s': %w", path, err)
		}

		table, err := Parse(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("reading platform descriptor '%s': %w", path, err)
		}

		logger.Debug("Loaded platform descriptor",
			log.String("file", path),
			log.Int("symbols", table.Len()))
		return &Table{Symbols: table, Source: path}, nil
	}

	logger.Warn("Platform descriptor not found, using built-in table",
		log.String("file", DescriptorName),
		log.String("base", baseDir))
	return &Table{Symbols: Builtin(), Fallback: true}, nil
}

// Parse reads descriptor lines of the form "NAME EQU $HEX". Only lines that
// contain the EQU keyword are considered, the value is the first run of
// hexadecimal digits after a '$'.
func Parse(reader io.Reader) (*symbols.Table, error) {
	table := symbols.NewTable()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		name, value, ok := parseLine(scanner.Text())
		if ok {
			table.SetPlatform(name, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning descriptor: %w", err)
	}
	return table, nil
}

func parseLine(line string) (string, uint16, bool) {
	if !strings.Contains(strings.ToUpper(line), "EQU") {
		return "", 0, false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || strings.HasPrefix(fields[0], ";") || strings.HasPrefix(fields[0], "*") {
		return "", 0, false
	}
	name := strings.TrimSuffix(fields[0], ":")

	dollar := strings.IndexByte(line, '$')
	if dollar < 0 {
		return "", 0, false
	}
	end := dollar + 1
	for end < len(line) && isHexDigit(line[end]) {
		end++
	}
	if end == dollar+1 {
		return "", 0, false
	}

	value, err := strconv.ParseUint(line[dollar+1:end], 16, 16)
	if err != nil {
		return "", 0, false
	}
	return name, uint16(value), true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
