package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MalformedError reports input that is not a well-formed unified diff.
// It is fatal to the whole parse: no partial Model is ever returned.
type MalformedError struct {
	LineNum int // 1-based line in the input, 0 if not tied to a line
	Reason  string
}

func (e *MalformedError) Error() string {
	if e.LineNum > 0 {
		return fmt.Sprintf("malformed diff at line %d: %s", e.LineNum, e.Reason)
	}
	return "malformed diff: " + e.Reason
}

var (
	diffHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	renameFromRe = regexp.MustCompile(`^rename from (.+)$`)
	renameToRe   = regexp.MustCompile(`^rename to (.+)$`)
	binaryRe     = regexp.MustCompile(`^Binary files? .* differs?$`)
)

// Parse turns unified diff text into a Model. The input must contain at least
// one recognizable file header; anything structurally inconsistent (an
// unparseable hunk header, a hunk whose lines do not tally with its declared
// counts) yields a *MalformedError and no model.
func Parse(input string) (*Model, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &MalformedError{Reason: "empty diff text"}
	}

	lines := strings.Split(input, "\n")
	model := &Model{}
	i := 0

	for i < len(lines) {
		if !isFileHeader(lines, i) {
			i++
			continue
		}

		fc, err := parseFile(lines, &i)
		if err != nil {
			return nil, err
		}
		model.Files = append(model.Files, fc)
	}

	if len(model.Files) == 0 {
		return nil, &MalformedError{Reason: "no recognizable file header"}
	}
	return model, nil
}

// isFileHeader reports whether lines[i] begins a new file section: either a
// "diff --git" header or a bare "--- " / "+++ " pair as emitted by plain
// diff -u.
func isFileHeader(lines []string, i int) bool {
	if diffHeaderRe.MatchString(lines[i]) {
		return true
	}
	return strings.HasPrefix(lines[i], "--- ") &&
		i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ")
}

// parseFile consumes one file section starting at lines[*i], advancing *i
// past it.
func parseFile(lines []string, i *int) (FileChange, error) {
	var fc FileChange
	renamed := false
	binary := false

	if m := diffHeaderRe.FindStringSubmatch(lines[*i]); m != nil {
		fc.OldPath = m[1]
		fc.NewPath = m[2]
		*i++
	}

	// Extended header lines up to the first hunk, binary marker, or next file.
header:
	for *i < len(lines) {
		line := lines[*i]

		if strings.HasPrefix(line, "@@") || diffHeaderRe.MatchString(line) {
			break
		}

		switch {
		case strings.HasPrefix(line, "new file mode"):
			fc.Kind = ChangeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			fc.Kind = ChangeDeleted
		case renameFromRe.MatchString(line):
			fc.OldPath = renameFromRe.FindStringSubmatch(line)[1]
			renamed = true
		case renameToRe.MatchString(line):
			fc.NewPath = renameToRe.FindStringSubmatch(line)[1]
			renamed = true
		case binaryRe.MatchString(line):
			binary = true
			*i++
			break header
		case strings.HasPrefix(line, "--- "):
			if p := headerPath(line[4:]); p != "" {
				fc.OldPath = p
			} else {
				fc.Kind = ChangeAdded // old side is /dev/null
			}
			*i++
			if *i < len(lines) && strings.HasPrefix(lines[*i], "+++ ") {
				if p := headerPath(lines[*i][4:]); p != "" {
					fc.NewPath = p
				} else {
					fc.Kind = ChangeDeleted // new side is /dev/null
				}
				*i++
			}
			break header
		}
		*i++
	}

	// Hunks, until the next file section begins.
	for *i < len(lines) {
		line := lines[*i]
		if isFileHeader(lines, *i) {
			break
		}
		hm := hunkHeaderRe.FindStringSubmatch(line)
		if hm == nil {
			if strings.HasPrefix(line, "@@") {
				return FileChange{}, &MalformedError{LineNum: *i + 1, Reason: "unparseable hunk header"}
			}
			*i++
			continue
		}
		hunk, err := parseHunk(hm, lines, i)
		if err != nil {
			return FileChange{}, err
		}
		fc.Hunks = append(fc.Hunks, hunk)
	}

	if binary {
		fc.Hunks = nil
	}
	if fc.Kind == "" {
		if renamed || (fc.OldPath != "" && fc.NewPath != "" && fc.OldPath != fc.NewPath) {
			fc.Kind = ChangeRenamed
		} else {
			fc.Kind = ChangeModified
		}
	}
	if fc.OldPath == "" {
		fc.OldPath = fc.NewPath
	}
	if fc.NewPath == "" {
		fc.NewPath = fc.OldPath
	}
	if fc.Path() == "" {
		return FileChange{}, &MalformedError{LineNum: *i, Reason: "file section without a path"}
	}
	return fc, nil
}

// headerPath extracts the path from a ---/+++ header value, stripping the a/
// or b/ prefix. Returns "" for /dev/null.
func headerPath(s string) string {
	s = strings.TrimSpace(s)
	// diff -u may append a tab and timestamp after the path
	if idx := strings.IndexByte(s, '\t'); idx >= 0 {
		s = s[:idx]
	}
	if s == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		return s[2:]
	}
	return s
}

// parseHunk consumes one hunk starting at the @@ header in lines[*i] and
// validates its line tally against the declared counts. An omitted count in
// the header means 1, per the unified format.
func parseHunk(hm []string, lines []string, i *int) (Hunk, error) {
	headerLine := *i + 1
	oldStart, _ := strconv.Atoi(hm[1])
	newStart, _ := strconv.Atoi(hm[3])
	oldCount, newCount := 1, 1
	if hm[2] != "" {
		oldCount, _ = strconv.Atoi(hm[2])
	}
	if hm[4] != "" {
		newCount, _ = strconv.Atoi(hm[4])
	}

	hunk := Hunk{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
	}

	oldNum, newNum := oldStart, newStart
	oldSeen, newSeen := 0, 0
	*i++ // past the @@ header

	for *i < len(lines) {
		line := lines[*i]

		if strings.HasPrefix(line, "@@") {
			break
		}
		// Only look for the next file header once the declared counts are
		// satisfied: a removed line starting "-- " followed by an added line
		// starting "++ " renders as a ---/+++ pair and is still hunk body.
		if oldSeen >= oldCount && newSeen >= newCount && isFileHeader(lines, *i) {
			break
		}
		if strings.HasPrefix(line, `\ No newline at end of file`) {
			*i++
			continue
		}
		if line == "" {
			// Either a context line whose leading space was stripped in
			// transit, or trailing junk once the hunk is complete.
			if oldSeen >= oldCount && newSeen >= newCount {
				*i++
				break
			}
			hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, OldNum: oldNum, NewNum: newNum})
			oldNum++
			newNum++
			oldSeen++
			newSeen++
			*i++
			continue
		}

		switch line[0] {
		case ' ':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Content: line[1:], OldNum: oldNum, NewNum: newNum})
			oldNum++
			newNum++
			oldSeen++
			newSeen++
		case '+':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Content: line[1:], NewNum: newNum})
			newNum++
			newSeen++
		case '-':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineRemoved, Content: line[1:], OldNum: oldNum})
			oldNum++
			oldSeen++
		default:
			return Hunk{}, &MalformedError{LineNum: *i + 1, Reason: fmt.Sprintf("unexpected line marker %q inside hunk", line[0])}
		}
		*i++
	}

	if oldSeen != oldCount || newSeen != newCount {
		return Hunk{}, &MalformedError{
			LineNum: headerLine,
			Reason: fmt.Sprintf("hunk line tally mismatch: header declares -%d,+%d but found -%d,+%d",
				oldCount, newCount, oldSeen, newSeen),
		}
	}
	return hunk, nil
}
