// Package corpus loads the target file into the line-oriented
// representations consumed by the search strategies.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Scanner buffer sizing. Corpus lines are typically short, but a single
// long line must not abort the load.
const (
	initialBufSize = 64 * 1024
	maxLineSize    = 4 * 1024 * 1024
)

// Load reads the file at path and returns its lines with terminators
// stripped. Files ending in .gz are decompressed while streaming. Bytes are
// passed through untouched, so UTF-8 content round-trips exactly.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip corpus %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return lines, nil
}

// Generate writes a test corpus of numLines lines of the form
// "test string <n>" to path. Used by the gen subcommand and benchmarks.
func Generate(path string, numLines int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < numLines; i++ {
		if _, err := fmt.Fprintf(w, "test string %d\n", rand.Intn(numLines+1)); err != nil {
			return fmt.Errorf("write corpus %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush corpus %s: %w", path, err)
	}
	return nil
}
