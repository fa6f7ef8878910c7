package gitdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShortstatLogBasic(t *testing.T) {
	log := "aaa|2024-01-01\n1 file changed, 10 insertions(+), 2 deletions(-)\n" +
		"bbb|2024-01-02\n"

	commits := parseShortstatLog(log)
	assert.Len(t, commits, 2)
	assert.Equal(t, "aaa", commits[0].Hash)
	assert.Equal(t, 12, commits[0].Impact)
	assert.Equal(t, "bbb", commits[1].Hash)
	assert.Equal(t, 0, commits[1].Impact)
}

func TestParseShortstatLogMissingCounts(t *testing.T) {
	log := "ccc|2024-02-02\n1 file changed, 5 insertions(+)\n"
	commits := parseShortstatLog(log)
	assert.Len(t, commits, 1)
	assert.Equal(t, 5, commits[0].Impact)
}

func TestParseShortstatLogExtraBlankLines(t *testing.T) {
	log := "\n\nddd|2024-03-03\n\n\n2 files changed, 1 insertion(+), 1 deletion(-)\n\n"
	commits := parseShortstatLog(log)
	assert.Len(t, commits, 1)
	assert.Equal(t, 2, commits[0].Impact)
}

func TestParseRecentHistoryBasic(t *testing.T) {
	log := "aaa|fix bug|Alice|1700000000\nM\tfile1.go\nA\tfile2.go\n" +
		"bbb|add feature|Bob|1700000100\nR100\told.go\tnew.go\n"

	entries := parseRecentHistory(log)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "aaa", entries[0].Hash)
		assert.Equal(t, "fix bug", entries[0].Subject)
		assert.Len(t, entries[0].Files, 2)
		assert.Equal(t, "M", entries[0].Files[0].Status)
		assert.Equal(t, "file1.go", entries[0].Files[0].Path)

		assert.Equal(t, "bbb", entries[1].Hash)
		assert.Len(t, entries[1].Files, 1)
		assert.Equal(t, "R", entries[1].Files[0].Status)
		assert.Equal(t, "new.go", entries[1].Files[0].Path)
	}
}

func TestParseRecentHistoryEmptyOutputYieldsEmpty(t *testing.T) {
	entries := parseRecentHistory("")
	assert.Empty(t, entries)
}
