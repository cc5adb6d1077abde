package artifact

import "strings"

const (
	fileSuffix   = "_game.html"
	fallbackName = "paroles"
)

// FileName derives a filesystem-safe document name from a title: ASCII
// letters and digits only, lowercased.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackName + fileSuffix
	}
	return b.String() + fileSuffix
}
