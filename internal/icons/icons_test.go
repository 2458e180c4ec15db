package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, "Laptop", Resolve("laptop").Lucide)
	assert.Equal(t, DefaultName, Resolve("").Name)
	assert.Equal(t, DefaultName, Resolve("rocket").Name)
	assert.Equal(t, Default(), Resolve("Laptop"))
}

func TestLookup(t *testing.T) {
	g, ok := Lookup("cart")
	assert.True(t, ok)
	assert.Equal(t, "ShoppingCart", g.Lucide)

	_, ok = Lookup("rocket")
	assert.False(t, ok)
}

func TestNamesOrder(t *testing.T) {
	names := Names()
	assert.Len(t, names, 10)
	assert.Equal(t, "laptop", names[0])
	assert.Equal(t, "cart", names[len(names)-1])
	assert.Len(t, All(), 10)
}
