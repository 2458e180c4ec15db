package dialog

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"inventory_back_end/internal/icons"
	"inventory_back_end/internal/models"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Form porte la saisie brute du dialogue : tout est texte jusqu'à la conversion.
type Form struct {
	Name     string `form:"name" validate:"required"`
	SKU      string `form:"sku" validate:"required,sku"`
	Supplier string `form:"supplier" validate:"required"`
	Category string `form:"category" validate:"required,category"`
	Quantity string `form:"quantityInStock" validate:"required,positive_int"`
	Price    string `form:"price" validate:"required,positive_decimal"`
	Icon     string `form:"icon" validate:"required,icon"`
}

// FieldErrors associe un champ du formulaire à son message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range FieldNames() {
		if msg, ok := e[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func FieldNames() []string {
	return []string{"name", "sku", "supplier", "category", "quantityInStock", "price", "icon"}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	must(v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("positive_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n > 0
	}))
	must(v.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.GreaterThan(decimal.Zero)
	}))
	must(v.RegisterValidation("icon", func(fl validator.FieldLevel) bool {
		_, ok := icons.Lookup(fl.Field().String())
		return ok
	}))
	return v
}

// must fait échouer l'initialisation si un tag de validation est mal enregistré.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

var messages = map[string]string{
	"name":            "Name is required",
	"sku":             "SKU may only contain letters, numbers, hyphens and underscores",
	"supplier":        "Supplier is required",
	"category":        "Select a valid category",
	"quantityInStock": "Quantity must be a whole number greater than 0",
	"price":           "Price must be a number greater than 0",
	"icon":            "Select an icon",
}

// normalized retourne une copie sans espaces superflus, l'icône ramenée à un nom connu.
func (f Form) normalized() Form {
	out := Form{
		Name:     strings.TrimSpace(f.Name),
		SKU:      strings.TrimSpace(f.SKU),
		Supplier: strings.TrimSpace(f.Supplier),
		Category: strings.TrimSpace(f.Category),
		Quantity: strings.TrimSpace(f.Quantity),
		Price:    strings.TrimSpace(f.Price),
	}
	out.Icon = icons.Resolve(strings.TrimSpace(f.Icon)).Name
	return out
}

// Validate retourne nil si le formulaire peut être soumis.
func (f Form) Validate() FieldErrors {
	err := validate.Struct(f.normalized())
	if err == nil {
		return nil
	}

	errs := FieldErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		if field == "sku" && fe.Tag() == "required" {
			errs[field] = "SKU is required"
			continue
		}
		errs[field] = messages[field]
	}
	return errs
}

// Apply convertit la saisie et la fusionne sur base. Le formulaire doit être valide.
func (f Form) Apply(base models.Product) (models.Product, error) {
	if errs := f.Validate(); errs != nil {
		return base, errs
	}
	n := f.normalized()

	qty, err := strconv.Atoi(n.Quantity)
	if err != nil {
		return base, FieldErrors{"quantityInStock": err.Error()}
	}
	price, err := decimal.NewFromString(n.Price)
	if err != nil {
		return base, FieldErrors{"price": err.Error()}
	}

	out := base
	out.Name = n.Name
	out.SKU = n.SKU
	out.Supplier = n.Supplier
	out.Category = models.Category(n.Category)
	out.QuantityInStock = qty
	out.Price = price.InexactFloat64()
	out.Icon = n.Icon
	return out, nil
}

// FormFromProduct pré-remplit le formulaire d'édition.
func FormFromProduct(p models.Product) Form {
	return Form{
		Name:     p.Name,
		SKU:      p.SKU,
		Supplier: p.Supplier,
		Category: string(p.Category),
		Quantity: strconv.Itoa(p.QuantityInStock),
		Price:    decimal.NewFromFloat(p.Price).String(),
		Icon:     icons.Resolve(p.Icon).Name,
	}
}

// Set modifie un champ par son nom (celui de l'API : name, sku, quantityInStock...).
func (f *Form) Set(field, value string) error {
	switch field {
	case "name":
		f.Name = value
	case "sku":
		f.SKU = value
	case "supplier":
		f.Supplier = value
	case "category":
		f.Category = value
	case "quantityInStock", "quantity":
		f.Quantity = value
	case "price":
		f.Price = value
	case "icon":
		f.Icon = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
