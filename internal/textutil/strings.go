// Package textutil implements the string helpers of go-webhelpers:
// literal replace-all, platform-agnostic file names, fixed-width chunking
// and a small 32-bit string hash.
package textutil

import (
	"strings"
	"unicode/utf16"
)

// ReplaceAll replaces every occurrence of find in s with replace.
// An empty s yields an empty string, and s is returned untouched when find
// does not occur in it. Matching is literal; find is never a pattern.
func ReplaceAll(s, find, replace string) string {
	if s == "" {
		return ""
	}
	if !strings.Contains(s, find) {
		return s
	}
	return strings.ReplaceAll(s, find, replace)
}

// FilenameFromPath returns the last element of a slash or backslash
// separated path. The forward slash wins when both occur.
func FilenameFromPath(path string) string {
	sep := "/"
	if !strings.Contains(path, sep) {
		sep = `\`
	}
	if !strings.Contains(path, sep) {
		return path
	}
	parts := strings.Split(path, sep)
	return parts[len(parts)-1]
}

// ChunkString splits s into consecutive chunks of at most n runes.
// Line terminators never become part of a chunk: they end the current chunk
// and are dropped. It returns nil when s is empty, n <= 0 or s holds
// nothing but line terminators.
func ChunkString(s string, n int) []string {
	if s == "" || n <= 0 {
		return nil
	}

	var chunks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, r := range s {
		if isLineTerminator(r) {
			flush()
			continue
		}
		cur = append(cur, r)
		if len(cur) == n {
			flush()
		}
	}
	flush()

	return chunks
}

// isLineTerminator reports the characters a regular expression dot refuses
// to match.
func isLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}

// Hash computes the classic "h*31 + c" string hash over UTF-16 code units,
// wrapping as a signed 32-bit integer. The empty string hashes to 0.
// It is not suitable for anything security related.
func Hash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}

// HashStrings hashes the concatenation of parts.
func HashStrings(parts []string) int32 {
	return Hash(strings.Join(parts, ""))
}
