package models

type Category string

const (
	CategoryElectronics    Category = "Electronics"
	CategoryFurniture      Category = "Furniture"
	CategoryClothing       Category = "Clothing"
	CategoryBooks          Category = "Books"
	CategoryToys           Category = "Toys"
	CategoryBeauty         Category = "Beauty"
	CategorySports         Category = "Sports"
	CategoryHomeDecor      Category = "Home Decor"
	CategoryHomeAppliances Category = "Home Appliances"
	CategoryOthers         Category = "Others"
)

var categories = []Category{
	CategoryElectronics,
	CategoryFurniture,
	CategoryClothing,
	CategoryBooks,
	CategoryToys,
	CategoryBeauty,
	CategorySports,
	CategoryHomeDecor,
	CategoryHomeAppliances,
	CategoryOthers,
}

// Categories retourne l'énumération fermée, dans l'ordre d'affichage.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
