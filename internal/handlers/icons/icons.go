package icons

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iconset "inventory_back_end/internal/icons"
)

// Assets stocke les glyphes SVG des icônes (MinIO).
type Assets interface {
	SignedURL(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, name string, r io.Reader, size int64) error
}

type Handler struct {
	assets Assets
}

// NewHandler accepte assets nil : la liste est alors servie sans URL et l'upload est désactivé.
func NewHandler(assets Assets) *Handler {
	return &Handler{assets: assets}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/icons", h.ListIcons)
	router.PUT("/icons/:name", h.UploadIcon)
}

type iconResponse struct {
	iconset.Glyph
	Default bool   `json:"default,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (h *Handler) ListIcons(c *gin.Context) {
	all := iconset.All()
	out := make([]iconResponse, 0, len(all))
	for _, g := range all {
		item := iconResponse{Glyph: g, Default: g.Name == iconset.DefaultName}
		if h.assets != nil {
			url, err := h.assets.SignedURL(c.Request.Context(), g.Name)
			if err != nil {
				zap.S().Warnf("⚠️ URL signée icône %s: %v", g.Name, err)
			} else {
				item.URL = url
			}
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// === PUT /api/icons/:name (multipart, champ "file") ===
func (h *Handler) UploadIcon(c *gin.Context) {
	if h.assets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Icon storage is not configured"})
		return
	}

	name := c.Param("name")
	if _, ok := iconset.Lookup(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown icon", "code": "not_found"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file received", "code": "validation"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	if err := h.assets.Upload(c.Request.Context(), name, file, fileHeader.Size); err != nil {
		zap.S().Errorf("❌ Upload MinIO icône %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload icon"})
		return
	}

	zap.S().Infof("🪣 Glyphe %s mis à jour", name)
	c.JSON(http.StatusOK, gin.H{"message": "Icon uploaded", "name": name})
}
