// Package table projette le cache produits en page affichable : filtres, tri, pagination.
package table

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"inventory_back_end/internal/icons"
	"inventory_back_end/internal/models"
)

const DefaultPageSize = 10

type Column string

const (
	ColumnName            Column = "name"
	ColumnSKU             Column = "sku"
	ColumnSupplier        Column = "supplier"
	ColumnCategory        Column = "category"
	ColumnQuantityInStock Column = "quantityInStock"
	ColumnPrice           Column = "price"
	ColumnCreatedAt       Column = "createdAt"
)

func Columns() []Column {
	return []Column{ColumnName, ColumnSKU, ColumnSupplier, ColumnCategory, ColumnQuantityInStock, ColumnPrice, ColumnCreatedAt}
}

type Sort struct {
	Column Column
	Desc   bool
}

// DefaultSort : plus récent d'abord.
var DefaultSort = Sort{Column: ColumnCreatedAt, Desc: true}

type Row struct {
	Product   models.Product
	Glyph     icons.Glyph
	Price     string
	CreatedAt string
}

type Page struct {
	Rows        []Row
	PageIndex   int
	PageSize    int
	PageCount   int
	TotalRows   int
	CanPrevious bool
	CanNext     bool
}

type Table struct {
	data       []models.Product
	nameFilter string
	categories map[models.Category]struct{}
	sort       Sort
	pageIndex  int
	pageSize   int
	fold       cases.Caser
}

func New(pageSize int) *Table {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Table{
		categories: make(map[models.Category]struct{}),
		sort:       DefaultSort,
		pageSize:   pageSize,
		fold:       cases.Fold(),
	}
}

// SetData remplace les données ; la page courante est ramenée dans les bornes.
func (t *Table) SetData(products []models.Product) {
	t.data = append([]models.Product(nil), products...)
	t.clampPage()
}

func (t *Table) NameFilter() string { return t.nameFilter }

func (t *Table) SetNameFilter(value string) {
	t.nameFilter = value
	t.pageIndex = 0
}

// CategoryFilter retourne les catégories sélectionnées dans l'ordre de l'énumération.
func (t *Table) CategoryFilter() []models.Category {
	var out []models.Category
	for _, c := range models.Categories() {
		if _, ok := t.categories[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SetCategoryFilter remplace la sélection. Changer de catégories remet aussi le tri
// par défaut (plus récent d'abord).
func (t *Table) SetCategoryFilter(cats []models.Category) {
	t.categories = make(map[models.Category]struct{}, len(cats))
	for _, c := range cats {
		t.categories[c] = struct{}{}
	}
	t.sort = DefaultSort
	t.pageIndex = 0
}

func (t *Table) ToggleCategory(c models.Category) {
	cats := t.CategoryFilter()
	if _, ok := t.categories[c]; ok {
		cats = cats[:0]
		for sel := range t.categories {
			if sel != c {
				cats = append(cats, sel)
			}
		}
	} else {
		cats = append(cats, c)
	}
	t.SetCategoryFilter(cats)
}

func (t *Table) ResetFilters() {
	t.nameFilter = ""
	t.SetCategoryFilter(nil)
}

func (t *Table) Sort() Sort { return t.sort }

func (t *Table) SetSort(col Column, desc bool) {
	t.sort = Sort{Column: col, Desc: desc}
}

// ToggleSort : même colonne, on inverse le sens ; nouvelle colonne, ordre croissant.
func (t *Table) ToggleSort(col Column) {
	if t.sort.Column == col {
		t.sort.Desc = !t.sort.Desc
		return
	}
	t.sort = Sort{Column: col}
}

func (t *Table) PageIndex() int { return t.pageIndex }
func (t *Table) PageSize() int  { return t.pageSize }

func (t *Table) PageCount() int {
	n := len(t.Rows())
	if n == 0 {
		return 1
	}
	return (n + t.pageSize - 1) / t.pageSize
}

func (t *Table) CanPreviousPage() bool { return t.pageIndex > 0 }
func (t *Table) CanNextPage() bool     { return t.pageIndex < t.PageCount()-1 }

func (t *Table) FirstPage() { t.pageIndex = 0 }
func (t *Table) LastPage()  { t.pageIndex = t.PageCount() - 1 }

func (t *Table) PreviousPage() {
	if t.CanPreviousPage() {
		t.pageIndex--
	}
}

func (t *Table) NextPage() {
	if t.CanNextPage() {
		t.pageIndex++
	}
}

func (t *Table) SetPageIndex(i int) {
	t.pageIndex = i
	t.clampPage()
}

// SetPageSize garde visible la première ligne de la page courante.
func (t *Table) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	top := t.pageIndex * t.pageSize
	t.pageSize = size
	t.pageIndex = top / size
	t.clampPage()
}

func (t *Table) clampPage() {
	if last := t.PageCount() - 1; t.pageIndex > last {
		t.pageIndex = last
	}
	if t.pageIndex < 0 {
		t.pageIndex = 0
	}
}

func (t *Table) matches(p models.Product) bool {
	if t.nameFilter != "" && !strings.Contains(t.fold.String(p.Name), t.fold.String(t.nameFilter)) {
		return false
	}
	if len(t.categories) == 0 {
		return true
	}
	_, ok := t.categories[p.Category]
	return ok
}

// Rows retourne toutes les lignes filtrées et triées, sans pagination.
func (t *Table) Rows() []models.Product {
	out := make([]models.Product, 0, len(t.data))
	for _, p := range t.data {
		if t.matches(p) {
			out = append(out, p)
		}
	}

	less := t.less()
	sort.SliceStable(out, func(i, j int) bool {
		if t.sort.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (t *Table) less() func(a, b models.Product) bool {
	text := func(a, b string) bool { return t.fold.String(a) < t.fold.String(b) }
	switch t.sort.Column {
	case ColumnName:
		return func(a, b models.Product) bool { return text(a.Name, b.Name) }
	case ColumnSKU:
		return func(a, b models.Product) bool { return text(a.SKU, b.SKU) }
	case ColumnSupplier:
		return func(a, b models.Product) bool { return text(a.Supplier, b.Supplier) }
	case ColumnCategory:
		return func(a, b models.Product) bool { return a.Category < b.Category }
	case ColumnQuantityInStock:
		return func(a, b models.Product) bool { return a.QuantityInStock < b.QuantityInStock }
	case ColumnPrice:
		return func(a, b models.Product) bool { return a.Price < b.Price }
	default:
		return func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (t *Table) Project() Page {
	rows := t.Rows()
	t.clampPage()

	start := t.pageIndex * t.pageSize
	end := start + t.pageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	page := Page{
		Rows:        make([]Row, 0, end-start),
		PageIndex:   t.pageIndex,
		PageSize:    t.pageSize,
		PageCount:   t.PageCount(),
		TotalRows:   len(rows),
		CanPrevious: t.CanPreviousPage(),
		CanNext:     t.CanNextPage(),
	}
	for _, p := range rows[start:end] {
		page.Rows = append(page.Rows, Row{
			Product:   p,
			Glyph:     icons.Resolve(p.Icon),
			Price:     FormatPrice(p.Price),
			CreatedAt: FormatDate(p.CreatedAt),
		})
	}
	return page
}

func FormatPrice(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// Selector est implémenté par store.Store.
type Selector interface {
	SetSelectedProduct(p *models.Product)
	SetOpenProductDialog(open bool)
	SetOpenDeleteDialog(open bool)
}

// Edit ouvre le dialogue d'édition pré-rempli avec la ligne.
func Edit(sel Selector, row Row) {
	p := row.Product
	sel.SetSelectedProduct(&p)
	sel.SetOpenProductDialog(true)
}

// Delete ouvre la confirmation de suppression pour la ligne.
func Delete(sel Selector, row Row) {
	p := row.Product
	sel.SetSelectedProduct(&p)
	sel.SetOpenDeleteDialog(true)
}
