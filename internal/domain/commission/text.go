package commission

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader pasa a minúsculas, quita tildes y colapsa espacios.
// "  Nº de Póliza " -> "nº de poliza".
func NormalizeHeader(s string) string {
	return strings.ToLower(CleanText(FoldAccents(s)))
}

// FoldAccents quita las marcas diacríticas: "Panamá" -> "Panama".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// CleanText colapsa espacios internos y recorta extremos.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
