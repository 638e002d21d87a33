package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category clave de categoría con su etiqueta para mostrar.
type Category struct {
	Key   string
	Label string
}

// Categories conjunto fijo de categorías. Se aceptan además claves libres.
var Categories = []Category{
	{Key: "electronics", Label: "Electrónica"},
	{Key: "clothing", Label: "Ropa"},
	{Key: "home", Label: "Hogar y Decoración"},
	{Key: "sports", Label: "Deportes y Ocio"},
	{Key: "books", Label: "Libros"},
	{Key: "food", Label: "Alimentación"},
	{Key: "beauty", Label: "Belleza y Cuidado"},
	{Key: "automotive", Label: "Automotriz"},
	{Key: "tools", Label: "Herramientas"},
	{Key: "other", Label: "Otros"},
}

// NormalizeCategory quita espacios y tildes, aplica case folding y une palabras con "-".
// "  Eletrônicos " y "eletronicos" producen la misma clave.
func NormalizeCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), "-")
}

// CategoryLabel devuelve la etiqueta de una clave conocida o la propia clave si es libre.
func CategoryLabel(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}
