package errors

import (
	"strings"
	"unicode"
)

// maxNameLen bounds output and surface names accepted from scene files and the IPC API.
const maxNameLen = 128

// ValidateName checks an output or surface name supplied by a user.
// Names must be non-empty, printable and free of path separators, since
// they appear in URLs and file names.
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}
	if len(name) > maxNameLen {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains control characters", kind)
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "%s name cannot contain path separators", kind)
	}
	return nil
}

// ValidateDimensions checks a width and height pair for an output or surface.
func ValidateDimensions(kind string, width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "%s dimensions must be positive, got %dx%d", kind, width, height)
	}
	const maxDim = 1 << 15
	if width > maxDim || height > maxDim {
		return New(ErrCodeInvalidInput, "%s dimensions exceed %d, got %dx%d", kind, maxDim, width, height)
	}
	return nil
}
