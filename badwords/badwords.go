package badwords

import (
	"os"
	"strings"
	"sync"

	"github.com/snapcharge/backend/logger"
)

// badWordsMap is a lowercase set of disallowed words. Review text containing
// any of them is rejected before it reaches the booking record.
var badWordsMap map[string]struct{}

var mu sync.RWMutex

// LoadBadWords loads the word list from a text file, one word per line.
// Blank lines and surrounding whitespace are ignored.
func LoadBadWords(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	words := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if word != "" {
			words[word] = struct{}{}
		}
	}

	mu.Lock()
	badWordsMap = words
	mu.Unlock()

	logger.InfoLogger.Infof("Loaded %d words into the review moderation list", len(words))
	return nil
}

// ContainsBadWords reports whether text contains any disallowed word.
// Matching is case-insensitive and token-based, splitting on anything that
// is not a letter or digit.
func ContainsBadWords(text string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if len(badWordsMap) == 0 {
		return false
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, word := range words {
		if _, found := badWordsMap[word]; found {
			return true
		}
	}
	return false
}
