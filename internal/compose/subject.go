package compose

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// ExtractSubject saca el asunto del correo: el primer encabezado '# ' del
// markdown. Si no hay encabezado, recorta la primera linea con texto.
func ExtractSubject(content string) string {
	if m := headingRe.FindStringSubmatch(content); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return truncate(line, 80)
	}
	return ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit])
}
