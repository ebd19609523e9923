package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid input", func(t *testing.T) {
		p, err := NewProduct(" Desk Lamp ", decimal.NewFromFloat(19.99))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "Desk Lamp", p.Name)
		assert.True(t, p.Price.Equal(decimal.NewFromFloat(19.99)))
		assert.True(t, p.IsActive)
		assert.Nil(t, p.Rating)
		assert.False(t, p.Supplier.IsSet())
		assert.NotNil(t, p.Images)
		assert.NotNil(t, p.Attributes)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("", decimal.Zero)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("fails with long name", func(t *testing.T) {
		_, err := NewProduct(strings.Repeat("a", 101), decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "100")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("Lamp", decimal.NewFromInt(-1))
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "price", de.Field)
	})
}

func TestProduct_Stock(t *testing.T) {
	p, err := NewProduct("Lamp", decimal.Zero)
	require.NoError(t, err)
	assert.False(t, p.IsInStock())

	require.NoError(t, p.AdjustStock(5))
	assert.True(t, p.IsInStock())
	assert.Equal(t, 5, p.Stock)

	err = p.AdjustStock(-6)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 5, p.Stock)

	require.NoError(t, p.AdjustStock(-5))
	assert.False(t, p.IsInStock())

	assert.Error(t, p.SetStock(-1))
	require.NoError(t, p.SetStock(3))
	assert.Equal(t, 3, p.Stock)
}

func TestProduct_Rate(t *testing.T) {
	p, err := NewProduct("Lamp", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.RatingValue())

	r := 4.5
	require.NoError(t, p.Rate(&r))
	r = 1 // caller's variable must not alias the stored rating
	assert.Equal(t, 4.5, p.RatingValue())

	bad := 5.5
	assert.Error(t, p.Rate(&bad))
	assert.Equal(t, 4.5, p.RatingValue())

	require.NoError(t, p.Rate(nil))
	assert.Nil(t, p.Rating)
}

func TestProduct_Supplier(t *testing.T) {
	p, err := NewProduct("Lamp", decimal.Zero)
	require.NoError(t, err)

	supplierID := uuid.New()
	p.AssignSupplier(supplierID, "Acme")
	assert.True(t, p.Supplier.IsSet())
	assert.True(t, p.Supplier.Is(supplierID))
	assert.False(t, p.Supplier.Is(uuid.New()))
	assert.Equal(t, "Acme", p.Supplier.Name)

	p.ClearSupplier()
	assert.False(t, p.Supplier.IsSet())
	assert.False(t, p.Supplier.Is(supplierID))
}

func TestProduct_Collections(t *testing.T) {
	p, err := NewProduct("Lamp", decimal.Zero)
	require.NoError(t, err)

	p.SetImages([]string{"https://img/1.png", " ", "https://img/2.png"})
	assert.Equal(t, []string{"https://img/1.png", "https://img/2.png"}, p.Images)

	attrs := map[string]string{"color": "red"}
	p.SetAttributes(attrs)
	attrs["color"] = "blue"
	assert.Equal(t, "red", p.Attributes["color"])

	p.SetAttributes(nil)
	assert.NotNil(t, p.Attributes)
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	p, err := NewProduct("Lamp", decimal.Zero)
	require.NoError(t, err)

	assert.Error(t, p.Activate())
	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
}
