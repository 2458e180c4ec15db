package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inventory_back_end/internal/models"
)

func TestListKeyIsNormalised(t *testing.T) {
	a := ListKey(models.ProductFilter{Search: "Lamp", Categories: []models.Category{"Toys", "Books"}})
	b := ListKey(models.ProductFilter{Search: "lamp", Categories: []models.Category{"Books", "Toys"}})

	assert.Equal(t, a, b)
	assert.Equal(t, "products:list:lamp|Books,Toys", a)
	assert.Equal(t, "products:list:|", ListKey(models.ProductFilter{}))
}

func TestVersionedKey(t *testing.T) {
	filter := models.ProductFilter{Search: "Lamp", Categories: []models.Category{"Toys", "Books"}}

	assert.Equal(t, "products:list:v3:lamp|Books,Toys", VersionedKey(3, filter))
	assert.NotEqual(t, VersionedKey(3, filter), VersionedKey(4, filter))
	assert.NotEqual(t, ProductListVersionKey, VersionedKey(0, models.ProductFilter{}))
}
