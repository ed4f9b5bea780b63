package checkout

import "github.com/fjod/go_cart/storefront/internal/domain"

// PrefillAddress builds the checkout form defaults from the shopper's saved
// profile. saved may be nil when the profile could not be read. The country is
// always the configured default.
func (b *Bridge) PrefillAddress(identity *domain.Identity, profileName string, saved *domain.ShippingAddress) domain.ShippingAddress {
	var address domain.ShippingAddress
	if saved != nil {
		address = *saved
	}

	address.Name = profileName
	if address.Name == "" && identity != nil {
		address.Name = identity.Name
	}
	address.Country = b.defaultCountry
	return address
}
