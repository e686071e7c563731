package diff

// ChangeKind classifies what happened to a file in a diff.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeModified ChangeKind = "modified"
	ChangeRenamed  ChangeKind = "renamed"
)

// LineKind classifies a single line within a hunk.
type LineKind string

const (
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
	LineContext LineKind = "context"
)

// Model is the structural form of a parsed unified diff.
// Files appear in the order they occur in the diff text.
type Model struct {
	Files []FileChange `json:"files"`
}

// FileChange holds the full change set for one file.
type FileChange struct {
	OldPath string     `json:"oldPath"`
	NewPath string     `json:"newPath"`
	Kind    ChangeKind `json:"kind"`
	Hunks   []Hunk     `json:"hunks"`
}

// Hunk is one contiguous block of changes, bounded by an @@ range header.
type Hunk struct {
	OldStart int    `json:"oldStart"`
	OldCount int    `json:"oldCount"`
	NewStart int    `json:"newStart"`
	NewCount int    `json:"newCount"`
	Lines    []Line `json:"lines"`
}

// Line is a single classified diff line. OldNum is zero for added lines and
// NewNum is zero for removed lines; both are 1-based otherwise.
type Line struct {
	Kind    LineKind `json:"kind"`
	Content string   `json:"content"`
	OldNum  int      `json:"oldNum,omitempty"`
	NewNum  int      `json:"newNum,omitempty"`
}

// Path returns the path findings should be attributed to: the new path,
// falling back to the old path for deletions.
func (fc *FileChange) Path() string {
	if fc.Kind == ChangeDeleted {
		return fc.OldPath
	}
	return fc.NewPath
}

// AddedCount returns the number of added lines across all hunks.
func (fc *FileChange) AddedCount() int {
	n := 0
	for _, h := range fc.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineAdded {
				n++
			}
		}
	}
	return n
}

// RemovedCount returns the number of removed lines across all hunks.
func (fc *FileChange) RemovedCount() int {
	n := 0
	for _, h := range fc.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineRemoved {
				n++
			}
		}
	}
	return n
}

// ChangedLines returns added + removed line counts. Used as the file's weight
// when aggregating scores.
func (fc *FileChange) ChangedLines() int {
	return fc.AddedCount() + fc.RemovedCount()
}
