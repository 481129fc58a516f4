package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads candidate path segments from a newline-delimited file.
// Blank lines and comment lines are skipped. Order is preserved and
// duplicates are kept: each occurrence is probed independently.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	return words, nil
}

// IsSafe reports whether a candidate stays inside the target's path
// namespace. Parent-directory markers and absolute paths would let the
// joined URL escape the base path, so they are rejected.
func IsSafe(word string) bool {
	if strings.Contains(word, "..") {
		return false
	}
	if strings.HasPrefix(word, "/") || strings.HasPrefix(word, `\`) {
		return false
	}
	return true
}
