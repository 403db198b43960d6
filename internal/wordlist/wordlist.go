// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var defaultWords = []string{
	"hello", "world", "typing", "keyboard", "mobile", "speed", "accuracy", "test",
	"adaptive", "resize", "finger", "letter", "screen", "quick", "brown", "jumps",
	"lazy", "phone", "thumb", "practice", "error", "smooth", "steady", "focus",
	"rhythm", "quiet", "zebra", "juggle", "vivid", "kernel", "python", "galaxy",
}

// Default returns the built-in word list.
func Default() []string {
	return append([]string(nil), defaultWords...)
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// Load reads path and keeps only typeable words. An empty path or a missing
// file yields the built-in list.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}
	words, err := LoadWords(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	words = Filter(words, Typeable)
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s has no lowercase a-z words", path)
	}
	return words, nil
}
