package clipsave

import (
	"net/url"
	"path"
	"strings"
)

// DefaultFilename is used when no usable filename can be derived from a
// media URL.
const DefaultFilename = "video.mp4"

// FilenameFromURL derives a save filename from a media URL's last path
// element, falling back to DefaultFilename when the path has no usable
// component.
func FilenameFromURL(s string) string {
	parsedURL, err := url.Parse(s)
	if err != nil {
		return DefaultFilename
	}
	trimmed := strings.Trim(parsedURL.Path, "/")
	if trimmed == "" {
		return DefaultFilename
	}
	elements := strings.Split(trimmed, "/")
	filename := elements[len(elements)-1]
	// Reject "filenames" that are just ".", "..", etc.
	if filename == "" || strings.ReplaceAll(filename, ".", "") == "" {
		return DefaultFilename
	}
	if path.Ext(filename) == "" {
		filename += ".mp4"
	}
	return SanitizeFilename(filename)
}

// SanitizeFilename strips path separators and leading dots so the result
// stays inside the target directory.
func SanitizeFilename(filename string) string {
	filename = strings.NewReplacer("/", "_", "\\", "_", string(rune(0)), "").Replace(filename)
	filename = strings.TrimLeft(filename, ".")
	if filename == "" {
		return DefaultFilename
	}
	return filename
}
