package export

import (
	"path"
	"strings"
	"time"
	"unicode"
)

// BuildFilename returns the download name for an export. A requested name
// is reduced to its base and stripped of unsafe characters; any known export
// extension is replaced with the one for format. An empty result falls back
// to <entity>_export_<yyyymmdd>.
func BuildFilename(requested string, entity EntityType, format Format, now time.Time) string {
	name := sanitizeFilename(requested)
	name = trimKnownExtension(name)
	if name == "" {
		name = string(entity) + "_export_" + now.UTC().Format("20060102")
	}
	return name + "." + format.Extension()
}

func sanitizeFilename(raw string) string {
	raw = strings.ReplaceAll(raw, "\\", "/")
	raw = path.Base(strings.TrimSpace(raw))
	if raw == "." || raw == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsControl(r):
			continue
		case r == '"' || r == '\'' || r == ';' || r == ':' || r == '*' || r == '?' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

func trimKnownExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".csv", ".xlsx", ".xls", ".json", ".pdf"} {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimRight(name[:len(name)-len(ext)], "._")
		}
	}
	return name
}
