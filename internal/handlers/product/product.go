package product

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
	"inventory_back_end/internal/repository"
	"inventory_back_end/internal/services"
)

type Handler struct {
	products  *services.ProductService
	labelSize int
	searchMW  []gin.HandlerFunc
}

func NewHandler(products *services.ProductService, labelSize int) *Handler {
	return &Handler{products: products, labelSize: labelSize}
}

// WithSearchMiddleware ajoute des middlewares propres à /products/search (rate limit).
func (h *Handler) WithSearchMiddleware(mw ...gin.HandlerFunc) *Handler {
	h.searchMW = append(h.searchMW, mw...)
	return h
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/categories", h.GetCategories)

	products := router.Group("/products")
	{
		products.GET("", h.GetAllProducts)
		products.POST("", h.CreateProduct)
		products.PUT("", h.MissingProductID)
		products.DELETE("", h.MissingProductID)
		products.GET("/search", append(h.searchMW, h.SearchProducts)...)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/label", h.GetProductLabel)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

type createProductInput struct {
	Name            string          `json:"name"`
	Supplier        string          `json:"supplier"`
	SKU             string          `json:"sku"`
	Category        models.Category `json:"category"`
	QuantityInStock int             `json:"quantityInStock"`
	Price           float64         `json:"price"`
	Icon            string          `json:"icon"`
}

func filterFromQuery(c *gin.Context) models.ProductFilter {
	return models.ProductFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Categories: models.ParseCategories(c.Query("categories")),
	}
}

// GetAllProducts liste les produits, du plus récent au plus ancien.
// Filtres : ?search= (sous-chaîne du nom, insensible à la casse) et ?categories=a,b
func (h *Handler) GetAllProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		zap.S().Errorf("❌ Lecture produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var input createProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product payload", "code": "validation"})
		return
	}

	created, err := h.products.Create(c.Request.Context(), models.Product{
		Name:            input.Name,
		Supplier:        input.Supplier,
		SKU:             input.SKU,
		Category:        input.Category,
		QuantityInStock: input.QuantityInStock,
		Price:           input.Price,
		Icon:            input.Icon,
	})
	if err != nil {
		respondError(c, err, "Something went wrong")
		return
	}

	zap.S().Infof("✅ Produit créé: %s (%s)", created.Name, created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchProducts passe par Elasticsearch (repli sur la base si indisponible).
func (h *Handler) SearchProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Search:     strings.TrimSpace(c.Query("q")),
		Categories: models.ParseCategories(c.Query("categories")),
	}

	results, err := h.products.Search(c.Request.Context(), filter)
	if err != nil {
		zap.S().Errorf("❌ Recherche produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetProductLabel retourne l'étiquette QR (PNG) du produit.
func (h *Handler) GetProductLabel(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load product")
		return
	}

	png, err := services.RenderLabel(*p, h.labelSize)
	if err != nil {
		zap.S().Errorf("❌ Génération étiquette %s: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render label"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.Categories())
}

// respondError traduit les erreurs du service en réponses HTTP ; rien ne remonte en panic.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		dup  *repository.DuplicateError
		vErr *services.ValidationError
	)
	switch {
	case errors.Is(err, services.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
	case errors.As(err, &dup):
		msg := "Product name must be unique"
		if dup.Field == "sku" {
			msg = "Product SKU must be unique"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "duplicate", "field": dup.Field})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "code": "validation", "field": vErr.Field})
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "code": "not_found"})
	default:
		zap.S().Errorf("❌ %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
