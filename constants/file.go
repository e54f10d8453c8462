package constants

import "strings"

// FileFormat is the text-extraction route chosen for a source document.
type FileFormat string

const (
	PDF     FileFormat = "PDF"
	TXT     FileFormat = "TXT"
	UNKNOWN FileFormat = "UNKNOWN"
)

// AllowedExtensions holds the default extensions picked up when scanning a directory.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a file extension to the extraction route that can read it.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "md", "text":
		return TXT
	default:
		return UNKNOWN
	}
}

// ExtSet builds an extension set from a list like ["pdf", ".TXT"].
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return AllowedExtensions
	}
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if n := NormalizeExt(e); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
