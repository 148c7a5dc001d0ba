// Package condition decides whether the conditional surfaces render for a
// product.
package condition

import (
	"context"
	"fmt"

	"github.com/idilsaglam/issuetracker/internal/shopify"
	"github.com/idilsaglam/issuetracker/internal/store"
)

// MinVariants is the smallest variant count that still hides the surfaces;
// products need more than this to show them.
const MinVariants = 1

const variantsCountQuery = `query Product($id: ID!) {
  product(id: $id) {
    variantsCount {
      count
    }
  }
}`

// VariantsCount returns the number of variants of a product.
func VariantsCount(ctx context.Context, exec shopify.Executor, productID string) (int, error) {
	resp, err := exec.Execute(ctx, shopify.Request{
		Query:     variantsCountQuery,
		Variables: map[string]any{"id": productID},
	})
	if err != nil {
		return 0, fmt.Errorf("variants count for %s: %w", productID, err)
	}
	var data struct {
		Product *struct {
			VariantsCount *struct {
				Count int `json:"count"`
			} `json:"variantsCount"`
		} `json:"product"`
	}
	if err := resp.Decode(&data); err != nil {
		return 0, fmt.Errorf("variants count for %s: %w", productID, err)
	}
	if data.Product == nil {
		return 0, fmt.Errorf("variants count for %s: %w", productID, store.ErrResourceNotFound)
	}
	if data.Product.VariantsCount == nil {
		return 0, nil
	}
	return data.Product.VariantsCount.Count, nil
}

// ShouldRender reports whether the product has more than one variant.
func ShouldRender(ctx context.Context, exec shopify.Executor, productID string) (bool, error) {
	n, err := VariantsCount(ctx, exec, productID)
	if err != nil {
		return false, err
	}
	return n > MinVariants, nil
}
