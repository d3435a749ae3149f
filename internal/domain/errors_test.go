package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestUnknownProductsError(t *testing.T) {
	err := &domain.UnknownProductsError{ProductIDs: []string{"P7", "P9"}}

	if !errors.Is(err, domain.ErrProductUnknown) {
		t.Fatal("UnknownProductsError must unwrap to ErrProductUnknown")
	}
	if !strings.Contains(err.Error(), "P7") || !strings.Contains(err.Error(), "P9") {
		t.Fatalf("error must name the offending products, got %q", err.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &domain.NotFoundError{OrderID: "missing-id"}

	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatal("NotFoundError must unwrap to ErrOrderNotFound")
	}
	if !strings.Contains(err.Error(), "missing-id") {
		t.Fatalf("error must embed the order id, got %q", err.Error())
	}
	if !domain.IsNotFound(err) {
		t.Fatal("IsNotFound must report true")
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", domain.ErrOrderNotFound)
	if !domain.IsNotFound(wrapped) {
		t.Fatal("IsNotFound must see through wrapping")
	}
	if domain.IsNotFound(errors.New("boom")) {
		t.Fatal("IsNotFound must not match unrelated errors")
	}
}
