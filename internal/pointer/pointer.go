// Package pointer builds and splits JSON Pointer paths (RFC 6901).
package pointer

import (
	"strconv"
	"strings"
)

const (
	EncodedTilde = "~0"
	EncodedSlash = "~1"
	Separator    = "/"
)

var (
	escaper   = strings.NewReplacer("~", EncodedTilde, "/", EncodedSlash)
	unescaper = strings.NewReplacer(EncodedSlash, "/", EncodedTilde, "~")
)

// Escape encodes an object key as a pointer segment.
func Escape(segment string) string {
	return escaper.Replace(segment)
}

// Unescape decodes a pointer segment back into the original key.
func Unescape(segment string) string {
	return unescaper.Replace(segment)
}

// Append adds an object key to base. The empty base is the document root.
func Append(base, key string) string {
	return base + Separator + Escape(key)
}

// AppendIndex adds an array index to base.
func AppendIndex(base string, index int) string {
	return base + Separator + strconv.Itoa(index)
}

// Split returns the unescaped segments of path. The root path has none.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	raw := strings.Split(strings.TrimPrefix(path, Separator), Separator)
	segments := make([]string, len(raw))
	for i, s := range raw {
		segments[i] = Unescape(s)
	}
	return segments
}
