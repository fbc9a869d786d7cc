package parsers

import (
	"context"
	"strings"
)

// LineSource convierte un archivo no tabular (PDF o imagen) en líneas de texto.
type LineSource interface {
	Lines(ctx context.Context, content []byte) ([]string, error)
}

// SplitLines parte un texto en líneas recortadas y sin vacías.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
