package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

type productImageDTO struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type productDTO struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Price    decimal.Decimal   `json:"price"`
	Images   []productImageDTO `json:"images"`
	Variants []domain.Variant  `json:"variants"`
}

// GetProduct fetches the product summary copied into the cart at add time.
func (cc *CatalogClient) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var dto productDTO
	err := cc.c.doJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), "", nil, &dto)
	if IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:       dto.ID,
		Name:     dto.Name,
		Price:    dto.Price,
		Variants: dto.Variants,
	}
	if len(dto.Images) > 0 {
		product.Image = dto.Images[0].URL
	}
	return product, nil
}
