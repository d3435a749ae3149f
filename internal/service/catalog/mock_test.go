package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
)

func TestMockValidator_ReturnsKnownSubset(t *testing.T) {
	validator := catalog.NewMockValidator().Seed(
		domain.Product{ID: "P1", Name: "Widget", PriceMinor: 1000},
		domain.Product{ID: "P2", Name: "Gadget", PriceMinor: 500},
	)

	products, err := validator.Validate(context.Background(), []string{"P1", "P404", "P2"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "P1", products[0].ID)
	require.Equal(t, "P2", products[1].ID)

	require.Equal(t, 1, validator.ValidateCalls)
	require.Equal(t, []string{"P1", "P404", "P2"}, validator.LastRequested)
}

func TestMockValidator_ConfiguredError(t *testing.T) {
	validator := catalog.NewMockValidator()
	validator.ValidateErr = errors.New("broker down")

	_, err := validator.Validate(context.Background(), []string{"P1"})
	require.Error(t, err)
	require.Equal(t, 1, validator.ValidateCalls)
}
