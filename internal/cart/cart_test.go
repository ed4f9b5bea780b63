package cart

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price int64) domain.Product {
	return domain.Product{ID: id, Name: "Shirt " + id, Price: decimal.NewFromInt(price)}
}

func variant(color string) domain.Variant {
	return domain.Variant{Color: color, ColorCode: "#000", Sizes: map[string]int{"S": 1, "M": 4, "L": 0}}
}

func TestAdd_SameTripleMerges(t *testing.T) {
	c := New()
	p, v := product("p1", 500), variant("Blue")

	assert.False(t, c.Add(p, v, "M", 1))
	assert.True(t, c.Add(p, v, "M", 2))
	assert.True(t, c.Add(p, v, "M", 4))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 7, c.Items()[0].Quantity)
}

func TestAdd_DifferentTriplesAppendInOrder(t *testing.T) {
	c := New()
	c.Add(product("p1", 100), variant("Blue"), "M", 1)
	c.Add(product("p1", 100), variant("Red"), "M", 1)
	c.Add(product("p1", 100), variant("Blue"), "L", 1)
	c.Add(product("p2", 100), variant("Blue"), "M", 1)

	items := c.Items()
	require.Len(t, items, 4)
	assert.Equal(t, domain.ItemKey{ProductID: "p1", Color: "Blue", Size: "M"}, items[0].Key())
	assert.Equal(t, domain.ItemKey{ProductID: "p1", Color: "Red", Size: "M"}, items[1].Key())
	assert.Equal(t, domain.ItemKey{ProductID: "p1", Color: "Blue", Size: "L"}, items[2].Key())
	assert.Equal(t, domain.ItemKey{ProductID: "p2", Color: "Blue", Size: "M"}, items[3].Key())
}

func TestAdd_NoStockCap(t *testing.T) {
	c := New()
	c.Add(product("p1", 100), variant("Blue"), "S", 10)
	assert.Equal(t, 10, c.ItemCount())
}

func TestUpdateQuantity_Floor(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		c := New()
		c.Add(product("p1", 500), variant("Blue"), "M", 3)
		c.UpdateQuantity("p1", "Blue", "M", n)
		assert.Equal(t, 1, c.Items()[0].Quantity, "quantity %d", n)
	}
}

func TestUpdateQuantity_MissingEntryIsNoop(t *testing.T) {
	c := New()
	c.Add(product("p1", 500), variant("Blue"), "M", 3)
	c.UpdateQuantity("p1", "Blue", "XL", 9)
	assert.Equal(t, 3, c.ItemCount())
}

func TestRemove_Idempotent(t *testing.T) {
	c := New()
	c.Add(product("p1", 500), variant("Blue"), "M", 1)
	c.Add(product("p2", 300), variant("Red"), "S", 2)

	c.Remove("p1", "Blue", "M")
	once := c.Items()
	c.Remove("p1", "Blue", "M")

	assert.Equal(t, once, c.Items())
	assert.Equal(t, 2, c.ItemCount())
}

func TestClear_Absolute(t *testing.T) {
	c := New()
	c.Add(product("p1", 500), variant("Blue"), "M", 2)
	c.Add(product("p2", 300), variant("Red"), "S", 1)

	c.Clear()

	assert.Zero(t, c.ItemCount())
	assert.True(t, c.Subtotal().IsZero())
	assert.Empty(t, c.Items())
}

func TestSubtotal_UsesSnapshotPrice(t *testing.T) {
	c := New()
	c.Add(product("p1", 500), variant("Blue"), "M", 2)
	c.Add(domain.Product{ID: "p2", Price: decimal.RequireFromString("199.99")}, variant("Red"), "S", 3)

	assert.Equal(t, "1599.97", c.Subtotal().String())
	assert.Equal(t, 5, c.ItemCount())
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add(product("p1", 500), variant("Blue"), "M", 2)

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, c.Items()[0].Quantity)
}

func TestScenario_AddMergeClampRemove(t *testing.T) {
	c := New()
	p := domain.Product{ID: "p1", Price: decimal.NewFromInt(500)}
	v := domain.Variant{Color: "Blue"}

	c.Add(p, v, "M", 1)
	assert.Equal(t, 1, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(500)))

	c.Add(p, v, "M", 2)
	assert.Equal(t, 3, c.Items()[0].Quantity)
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(1500)))

	c.UpdateQuantity("p1", "Blue", "M", 0)
	assert.Equal(t, 1, c.Items()[0].Quantity)
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(500)))

	c.Remove("p1", "Blue", "M")
	assert.Zero(t, c.ItemCount())
}
