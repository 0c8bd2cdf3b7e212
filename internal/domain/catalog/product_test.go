package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func usd(amount float64) valueobject.Money {
	return valueobject.NewMoneyFromFloat(amount, valueobject.USD)
}

func TestNewProduct(t *testing.T) {
	categoryID := uuid.New()
	ownerID := uuid.New()

	t.Run("valid product", func(t *testing.T) {
		p, err := NewProduct("Widget", "A fine widget", usd(19.99), categoryID, ownerID)
		require.NoError(t, err)

		assert.Equal(t, "Widget", p.Name)
		assert.Equal(t, "19.99", p.Price.StringFixed(2))
		assert.True(t, p.InStock)
		assert.Zero(t, p.Sales)
		assert.True(t, p.OwnedBy(ownerID))
		require.Len(t, p.DomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.DomainEvents()[0].EventType())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewProduct("  ", "", usd(1), categoryID, ownerID)
		assert.Error(t, err)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := NewProduct("Widget", "", usd(-1), categoryID, ownerID)
		assert.Error(t, err)
	})

	t.Run("missing category rejected", func(t *testing.T) {
		_, err := NewProduct("Widget", "", usd(1), uuid.Nil, ownerID)
		assert.Error(t, err)
	})
}

func TestProductSetPrice(t *testing.T) {
	p, err := NewProduct("Widget", "", usd(19.99), uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, p.SetPrice(usd(14.99)))
	assert.Equal(t, "14.99", p.Price.StringFixed(2))
	require.NotNil(t, p.OldPrice)
	assert.Equal(t, "19.99", p.OldPrice.StringFixed(2))

	assert.Error(t, p.SetPrice(usd(-5)))
}

func TestProductStock(t *testing.T) {
	p, err := NewProduct("Widget", "", usd(19.99), uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, p.SetStock(5))
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.InStock)

	require.NoError(t, p.SetStock(0))
	assert.False(t, p.InStock)

	assert.Error(t, p.SetStock(-1))

	// availability flag can be forced independently of the counter
	p.SetInStock(true)
	assert.True(t, p.InStock)
	assert.Equal(t, 0, p.Stock)
}

func TestImageListScan(t *testing.T) {
	var l ImageList
	require.NoError(t, l.Scan([]byte(`["a.jpg","b.jpg"]`)))
	assert.Equal(t, ImageList{"a.jpg", "b.jpg"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	v, err := ImageList{"x.png"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["x.png"]`, string(v.([]byte)))
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Tools", "Hand tools", "")
	require.NoError(t, err)
	assert.Equal(t, "Tools", c.Name)

	_, err = NewCategory("", "", "")
	assert.Error(t, err)

	require.NoError(t, c.Rename("Hardware"))
	assert.Equal(t, "Hardware", c.Name)
	assert.Equal(t, 2, c.Version)
}
