package gen

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ID returns a unique identifier generated from a UUID, using the last 12 characters.
func ID() string {
	id := uuid.NewString()

	return strings.ToUpper(id[len(id)-12:])
}

// TempName returns a random file name for a stored upload. The client name is
// left out so its length never counts against the file system name limit.
func TempName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ".xlsx"
}

// BaseName drops any directory part a client put in an upload name.
func BaseName(original string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(original, `\`, "/")))
	if base == "/" || base == "." {
		return "upload.xlsx"
	}
	return base
}
