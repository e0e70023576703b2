package vslint

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	separators    = regexp.MustCompile(`[\s_/\\:]+`)
)

// KebabCase lowercases a string, inserting dashes at camelCase boundaries and
// replacing whitespace, underscores and path separators with dashes. Path
// separators matter: Go subtest names contain "/", and the identifier must
// stay a single filename for the store and the image artifact.
func KebabCase(s string) string {
	s = camelBoundary.ReplaceAllString(s, "$1-$2")
	s = separators.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

// ContentHash returns the hex SHA-256 digest of serialized markup. The digest
// is the sole cache key for review verdicts: any byte difference in the
// markup is a cache miss. No whitespace or attribute-order normalization is
// assumed here; the caller hashes exactly what the reviewer will see.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// SnapshotIdentifier derives the snapshot key for a (test file, test name,
// size) triple. The same inputs always produce the same identifier,
// regardless of run order. The size suffix is only present when a size was
// explicitly requested.
func SnapshotIdentifier(testPath, testName string, size Size) string {
	name := filepath.Base(testPath) + "-" + testName
	if suffix := size.Suffix(); suffix != "" {
		name += "-" + suffix
	}
	return KebabCase(name)
}
