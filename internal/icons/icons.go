// Package icons associe un nom d'icône persisté à son glyphe d'affichage.
// Seule la clé texte est stockée ; le rendu est résolu à l'affichage.
package icons

type Glyph struct {
	Name   string `json:"name"`
	Lucide string `json:"lucide"`
	Symbol string `json:"symbol"`
}

const DefaultName = "package"

var glyphs = []Glyph{
	{Name: "laptop", Lucide: "Laptop", Symbol: "💻"},
	{Name: "smartphone", Lucide: "Smartphone", Symbol: "📱"},
	{Name: "tv", Lucide: "Tv", Symbol: "📺"},
	{Name: "shirt", Lucide: "Shirt", Symbol: "👕"},
	{Name: "book", Lucide: "Book", Symbol: "📖"},
	{Name: "palette", Lucide: "Palette", Symbol: "🎨"},
	{Name: "dumbbell", Lucide: "Dumbbell", Symbol: "🏋"},
	{Name: "home", Lucide: "Home", Symbol: "🏠"},
	{Name: "package", Lucide: "Package", Symbol: "📦"},
	{Name: "cart", Lucide: "ShoppingCart", Symbol: "🛒"},
}

var byName = func() map[string]Glyph {
	m := make(map[string]Glyph, len(glyphs))
	for _, g := range glyphs {
		m[g.Name] = g
	}
	return m
}()

// Lookup retourne le glyphe exact, sans repli.
func Lookup(name string) (Glyph, bool) {
	g, ok := byName[name]
	return g, ok
}

// Resolve retourne le glyphe du nom, ou le glyphe par défaut si le nom est vide ou inconnu.
func Resolve(name string) Glyph {
	if g, ok := byName[name]; ok {
		return g
	}
	return byName[DefaultName]
}

func Default() Glyph {
	return byName[DefaultName]
}

func All() []Glyph {
	out := make([]Glyph, len(glyphs))
	copy(out, glyphs)
	return out
}

func Names() []string {
	out := make([]string, 0, len(glyphs))
	for _, g := range glyphs {
		out = append(out, g.Name)
	}
	return out
}
