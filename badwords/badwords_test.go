package badwords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestList(t *testing.T, words string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(words), 0o644))
	require.NoError(t, LoadBadWords(path))
}

func TestContainsBadWords(t *testing.T) {
	loadTestList(t, "scam\nshit\n")

	assert.True(t, ContainsBadWords("total scam, avoid"))
	assert.True(t, ContainsBadWords("SCAM!!!"))
	assert.True(t, ContainsBadWords("this.is.shit"))
	assert.False(t, ContainsBadWords("great charger, friendly host"))
	assert.False(t, ContainsBadWords(""))

	// Substrings of clean words do not match.
	assert.False(t, ContainsBadWords("scampi dinner nearby"))
}

func TestLoadBadWordsSkipsBlankLines(t *testing.T) {
	loadTestList(t, "\n  scam  \n\n\n")
	assert.True(t, ContainsBadWords("scam"))
}

func TestLoadBadWordsMissingFile(t *testing.T) {
	assert.Error(t, LoadBadWords("/no/such/file.txt"))
}

func TestContainsBadWordsEmptyList(t *testing.T) {
	loadTestList(t, "")
	assert.False(t, ContainsBadWords("anything at all"))
}
