// Package markdown persists snapshot records as human-readable markdown
// documents with an embedded image reference, one <identifier>.md file per
// record. The document is hand-editable: flipping Pass to true is the
// documented way to override a stale failing verdict.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.SnapshotStore = (*Store)(nil)

// Store reads and writes SnapshotRecords as markdown under a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Document section markers.
const (
	passMarker   = "**Pass:**"
	hashMarker   = "**Content Hash:**"
	reviewHeader = "## Review"
	failedHeader = "### Failed Rules"
)

// Read returns the record for identifier, or nil if the file is missing or
// the document cannot be parsed back into a record.
func (s *Store) Read(identifier string) (*vslint.SnapshotRecord, error) {
	data, err := os.ReadFile(s.path(identifier))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return parse(string(data)), nil
}

// Write replaces the record for identifier, creating the directory if
// needed. Writing a byte-identical record leaves the existing file alone.
func (s *Store) Write(identifier string, record *vslint.SnapshotRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data := []byte(render(identifier, record))
	path := s.path(identifier)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) path(identifier string) string {
	return filepath.Join(s.dir, identifier+".md")
}

// render produces the markdown document for a record. The image link points
// at the companion artifact the orchestrator writes next to the document.
func render(identifier string, record *vslint.SnapshotRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", identifier)
	fmt.Fprintf(&sb, "%s `%t`\n", passMarker, record.Pass)
	fmt.Fprintf(&sb, "%s `%s`\n", hashMarker, record.ContentHash)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "![%s](%s.png)\n", identifier, identifier)
	sb.WriteString("\n")
	sb.WriteString(reviewHeader + "\n")
	if record.Explanation != "" {
		sb.WriteString(record.Explanation + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(failedHeader + "\n")
	for _, ruleID := range record.FailedRules {
		fmt.Fprintf(&sb, "- %s\n", ruleID)
	}
	return sb.String()
}

// parse reads a record back out of a markdown document. Any missing marker
// means the document was mangled; the record is then treated as absent.
func parse(doc string) *vslint.SnapshotRecord {
	lines := strings.Split(doc, "\n")

	passLine := findPrefixed(lines, passMarker)
	hashLine := findPrefixed(lines, hashMarker)
	reviewIdx := indexOf(lines, reviewHeader)
	// The genuine failed-rules header is always the last line render emits,
	// so anchor on the last occurrence: an explanation quoting the header
	// text stays inside the explanation.
	failedIdx := lastIndexOf(lines, failedHeader)
	if passLine == "" || hashLine == "" || reviewIdx < 0 || failedIdx < 0 || failedIdx < reviewIdx {
		return nil
	}

	hash := unquote(strings.TrimPrefix(hashLine, hashMarker))
	if hash == "" {
		return nil
	}
	passValue := unquote(strings.TrimPrefix(passLine, passMarker))
	if passValue != "true" && passValue != "false" {
		return nil
	}

	explanation := strings.TrimSpace(strings.Join(lines[reviewIdx+1:failedIdx], "\n"))

	failedRules := []string{}
	for _, line := range lines[failedIdx+1:] {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		failedRules = append(failedRules, strings.TrimPrefix(line, "- "))
	}

	return &vslint.SnapshotRecord{
		ContentHash: hash,
		FailedRules: failedRules,
		Pass:        passValue == "true",
		Explanation: explanation,
	}
}

func findPrefixed(lines []string, prefix string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

func indexOf(lines []string, target string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == target {
			return i
		}
	}
	return -1
}

func lastIndexOf(lines []string, target string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == target {
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "`", ""))
}
