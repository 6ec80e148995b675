package transport

import "fmt"

// Remote API paths consumed by the sync layer.
const (
	PathPing      = "/ping"
	PathRegister  = "/auth/register"
	PathLogin     = "/auth/login"
	PathVerifyOTP = "/auth/verify-otp"
	PathLogout    = "/auth/logout"

	// PathAdminBootstrap creates the first administrative account and is
	// the one call that never carries a bearer token.
	PathAdminBootstrap = "/users/admin"

	PathCart      = "/cart"
	PathCartItems = "/cart/items"
	PathAddresses = "/addresses"
	PathOrders    = "/orders"
)

func PathCartItem(id string) string {
	return fmt.Sprintf("%s/%s", PathCartItems, id)
}

func PathAddress(id string) string {
	return fmt.Sprintf("%s/%s", PathAddresses, id)
}

func PathOrder(id string) string {
	return fmt.Sprintf("%s/%s", PathOrders, id)
}
