package diff

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParse_SingleFileModification(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/main.go b/main.go",
		"index 1234567..89abcde 100644",
		"--- a/main.go",
		"+++ b/main.go",
		"@@ -1,3 +1,4 @@",
		" package main",
		"+import \"fmt\"",
		" ",
		" func main() {",
	)

	model, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, model.Files, 1)

	fc := model.Files[0]
	assert.Equal(t, "main.go", fc.OldPath)
	assert.Equal(t, "main.go", fc.NewPath)
	assert.Equal(t, ChangeModified, fc.Kind)
	require.Len(t, fc.Hunks, 1)

	h := fc.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 3, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 4, h.NewCount)
	require.Len(t, h.Lines, 4)

	assert.Equal(t, LineContext, h.Lines[0].Kind)
	assert.Equal(t, "package main", h.Lines[0].Content)
	assert.Equal(t, 1, h.Lines[0].OldNum)
	assert.Equal(t, 1, h.Lines[0].NewNum)

	assert.Equal(t, LineAdded, h.Lines[1].Kind)
	assert.Equal(t, `import "fmt"`, h.Lines[1].Content)
	assert.Equal(t, 0, h.Lines[1].OldNum)
	assert.Equal(t, 2, h.Lines[1].NewNum)

	assert.Equal(t, LineContext, h.Lines[2].Kind)
	assert.Equal(t, 2, h.Lines[2].OldNum)
	assert.Equal(t, 3, h.Lines[2].NewNum)
}

func TestParse_AddedFile(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/notes.txt b/notes.txt",
		"new file mode 100644",
		"index 0000000..e69de29",
		"--- /dev/null",
		"+++ b/notes.txt",
		"@@ -0,0 +1,2 @@",
		"+first",
		"+second",
	)

	model, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, model.Files, 1)

	fc := model.Files[0]
	assert.Equal(t, ChangeAdded, fc.Kind)
	assert.Equal(t, "notes.txt", fc.Path())
	assert.Equal(t, 2, fc.AddedCount())
	assert.Equal(t, 0, fc.RemovedCount())
	assert.Equal(t, 1, fc.Hunks[0].Lines[0].NewNum)
	assert.Equal(t, 2, fc.Hunks[0].Lines[1].NewNum)
}

func TestParse_DeletedFile(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/old.txt b/old.txt",
		"deleted file mode 100644",
		"index e69de29..0000000",
		"--- a/old.txt",
		"+++ /dev/null",
		"@@ -1,2 +0,0 @@",
		"-gone",
		"-for good",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, ChangeDeleted, fc.Kind)
	assert.Equal(t, "old.txt", fc.Path())
	assert.Equal(t, 2, fc.RemovedCount())
}

func TestParse_PureRename(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/pkg/a.go b/pkg/b.go",
		"similarity index 100%",
		"rename from pkg/a.go",
		"rename to pkg/b.go",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, ChangeRenamed, fc.Kind)
	assert.Equal(t, "pkg/a.go", fc.OldPath)
	assert.Equal(t, "pkg/b.go", fc.NewPath)
	assert.Empty(t, fc.Hunks)
}

func TestParse_RenameWithChanges(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/a.go b/b.go",
		"similarity index 90%",
		"rename from a.go",
		"rename to b.go",
		"--- a/a.go",
		"+++ b/b.go",
		"@@ -1,2 +1,2 @@",
		"-package a",
		"+package b",
		" // shared",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, ChangeRenamed, fc.Kind)
	require.Len(t, fc.Hunks, 1)
	assert.Equal(t, 1, fc.AddedCount())
	assert.Equal(t, 1, fc.RemovedCount())
}

func TestParse_BinaryFile(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/logo.png b/logo.png",
		"index 1234567..89abcde 100644",
		"Binary files a/logo.png and b/logo.png differ",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, ChangeModified, fc.Kind)
	assert.Empty(t, fc.Hunks)
	assert.Equal(t, 0, fc.ChangedLines())
}

func TestParse_AddedBinaryFile(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/logo.png b/logo.png",
		"new file mode 100644",
		"index 0000000..89abcde",
		"Binary files /dev/null and b/logo.png differ",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, ChangeAdded, fc.Kind, "new-file mode wins over the binary marker")
	assert.Empty(t, fc.Hunks)
	assert.Equal(t, 0, fc.ChangedLines())
}

// A removed line starting "-- " directly before an added line starting "++ "
// renders as a ---/+++ pair. The hunk must keep consuming body lines until
// its declared counts are met instead of mistaking that pair for the next
// file header.
func TestParse_DashDashBodyLinesAreNotAFileHeader(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/schema.sql b/schema.sql",
		"--- a/schema.sql",
		"+++ b/schema.sql",
		"@@ -1,3 +1,3 @@",
		" SELECT 1;",
		"--- drop the old index",
		"+++ create the new index",
		" SELECT 2;",
	)

	model, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, model.Files, 1)

	fc := model.Files[0]
	assert.Equal(t, "schema.sql", fc.Path())
	require.Len(t, fc.Hunks, 1)

	lines := fc.Hunks[0].Lines
	require.Len(t, lines, 4)
	assert.Equal(t, LineRemoved, lines[1].Kind)
	assert.Equal(t, "-- drop the old index", lines[1].Content)
	assert.Equal(t, LineAdded, lines[2].Kind)
	assert.Equal(t, "++ create the new index", lines[2].Content)
}

func TestParse_PlainUnifiedDiff(t *testing.T) {
	t.Parallel()

	// diff -u output: no git header, timestamps after the paths.
	input := joinLines(
		"--- a/hello.txt\t2024-01-01 10:00:00",
		"+++ b/hello.txt\t2024-01-01 10:05:00",
		"@@ -1 +1 @@",
		"-hello",
		"+goodbye",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	fc := model.Files[0]
	assert.Equal(t, "hello.txt", fc.Path())
	assert.Equal(t, ChangeModified, fc.Kind)
	require.Len(t, fc.Hunks, 1)
	assert.Equal(t, 1, fc.Hunks[0].OldCount)
	assert.Equal(t, 1, fc.Hunks[0].NewCount)
}

func TestParse_MultipleFilesKeepOrder(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/b.go b/b.go",
		"--- a/b.go",
		"+++ b/b.go",
		"@@ -1,1 +1,1 @@",
		"-x",
		"+y",
		"diff --git a/a.go b/a.go",
		"--- a/a.go",
		"+++ b/a.go",
		"@@ -1,1 +1,1 @@",
		"-p",
		"+q",
	)

	model, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, model.Files, 2)
	assert.Equal(t, "b.go", model.Files[0].Path())
	assert.Equal(t, "a.go", model.Files[1].Path())
}

func TestParse_NoNewlineMarker(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/f.txt b/f.txt",
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1 +1 @@",
		"-old",
		"+new",
		`\ No newline at end of file`,
	)

	model, err := Parse(input)
	require.NoError(t, err)
	assert.Len(t, model.Files[0].Hunks[0].Lines, 2)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty input", "", "empty diff text"},
		{"whitespace only", "  \n\t\n", "empty diff text"},
		{"no file header", "just some text\nnothing diff-like\n", "no recognizable file header"},
		{
			"tally short",
			joinLines(
				"diff --git a/f.txt b/f.txt",
				"--- a/f.txt",
				"+++ b/f.txt",
				"@@ -1,2 +1,3 @@",
				" only one line",
			),
			"tally mismatch",
		},
		{
			"tally excess",
			joinLines(
				"diff --git a/f.txt b/f.txt",
				"--- a/f.txt",
				"+++ b/f.txt",
				"@@ -1,1 +1,1 @@",
				" context",
				"+extra added line",
			),
			"tally mismatch",
		},
		{
			"garbage hunk header",
			joinLines(
				"diff --git a/f.txt b/f.txt",
				"--- a/f.txt",
				"+++ b/f.txt",
				"@@ nonsense @@",
				" context",
			),
			"unparseable hunk header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, model, "no partial model on failure")

			var merr *MalformedError
			require.True(t, errors.As(err, &merr), "error should be *MalformedError, got %T", err)
			assert.Contains(t, merr.Error(), tt.reason)
		})
	}
}

// Parsing is atomic: a bad second file must not leak the good first file.
func TestParse_FailureDiscardsEarlierFiles(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/good.go b/good.go",
		"--- a/good.go",
		"+++ b/good.go",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
		"diff --git a/bad.go b/bad.go",
		"--- a/bad.go",
		"+++ b/bad.go",
		"@@ -1,5 +1,5 @@",
		" not enough lines",
	)

	model, err := Parse(input)
	require.Error(t, err)
	assert.Nil(t, model)
}

// Round-trip of the structural invariant: declared hunk counts always equal
// the tallies recomputed from the parsed lines.
func TestParse_CountsRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		joinLines(
			"diff --git a/x.go b/x.go",
			"--- a/x.go",
			"+++ b/x.go",
			"@@ -10,5 +10,6 @@",
			" ctx one",
			"-removed",
			"+added one",
			"+added two",
			"+added three",
			" ctx two",
			"-removed two",
			" ctx three",
		),
		joinLines(
			"diff --git a/y.go b/y.go",
			"--- a/y.go",
			"+++ b/y.go",
			"@@ -1,3 +1,1 @@",
			"-gone",
			"-gone too",
			" kept",
			"@@ -9,1 +7,2 @@",
			" tail",
			"+appended",
		),
	}

	for _, input := range inputs {
		model, err := Parse(input)
		require.NoError(t, err)

		for _, fc := range model.Files {
			for _, h := range fc.Hunks {
				oldTally, newTally := 0, 0
				for _, l := range h.Lines {
					switch l.Kind {
					case LineContext:
						oldTally++
						newTally++
					case LineAdded:
						newTally++
					case LineRemoved:
						oldTally++
					}
				}
				assert.Equal(t, h.OldCount, oldTally)
				assert.Equal(t, h.NewCount, newTally)
			}
		}
	}
}

func TestParse_LineNumbersSeededFromHeader(t *testing.T) {
	t.Parallel()

	input := joinLines(
		"diff --git a/z.go b/z.go",
		"--- a/z.go",
		"+++ b/z.go",
		"@@ -40,3 +50,3 @@",
		" ctx",
		"-old line",
		"+new line",
	)

	model, err := Parse(input)
	require.NoError(t, err)

	lines := model.Files[0].Hunks[0].Lines
	assert.Equal(t, 40, lines[0].OldNum)
	assert.Equal(t, 50, lines[0].NewNum)
	assert.Equal(t, 41, lines[1].OldNum)
	assert.Equal(t, 51, lines[2].NewNum)
}
