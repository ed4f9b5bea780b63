package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Profile struct {
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	ShippingAddress *domain.ShippingAddress `json:"shipping_address"`
	Wishlist        []string                `json:"wishlist"`
}

type ProfileClient struct{ c *Client }

func NewProfileClient(c *Client) *ProfileClient { return &ProfileClient{c: c} }

func (pc *ProfileClient) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := pc.c.doJSON(ctx, http.MethodGet, "/profile", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddToWishlist returns the profile with the updated wishlist.
func (pc *ProfileClient) AddToWishlist(ctx context.Context, token, productID string) (*Profile, error) {
	var p Profile
	body := map[string]string{"product_id": productID}
	if err := pc.c.doJSON(ctx, http.MethodPost, "/profile/wishlist", token, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (pc *ProfileClient) RemoveFromWishlist(ctx context.Context, token, productID string) (*Profile, error) {
	var p Profile
	if err := pc.c.doJSON(ctx, http.MethodDelete, "/profile/wishlist/"+url.PathEscape(productID), token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
