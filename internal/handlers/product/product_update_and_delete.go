package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

// UpdateProduct fusionne les champs envoyés sur le produit existant.
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")
	if productID == "" {
		h.MissingProductID(c)
		return
	}

	var input models.ProductUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product payload", "code": "validation"})
		return
	}

	updated, err := h.products.Update(c.Request.Context(), productID, input)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	zap.S().Infof("✏️ Produit mis à jour: %s", productID)
	c.JSON(http.StatusOK, updated)
}

// DeleteProduct confirme la suppression même si le produit n'existait pas.
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	if _, err := h.products.Delete(c.Request.Context(), productID); err != nil {
		zap.S().Errorf("❌ Suppression produit %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

func (h *Handler) MissingProductID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required", "code": "validation"})
}
