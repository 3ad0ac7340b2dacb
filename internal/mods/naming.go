package mods

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 7

// NewID returns a record id: the base-36 millisecond timestamp followed by
// seven random lowercase alphanumerics.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + randomSuffix()
}

// NewFileName returns a blob key of the form <unixMillis>-<7 random><ext>,
// keeping the lowercased extension of original when it is alphanumeric.
func NewFileName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), randomSuffix(), extension(original))
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}

func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
