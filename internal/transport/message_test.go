package transport

import "testing"

func TestExtractMessageEnvelopes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"cart item not found"}`, "cart item not found"},
		{"title and detail", `{"title":"Bad Request","detail":"quantity must be positive"}`, "Bad Request: quantity must be positive"},
		{"detail only", `{"detail":"quantity must be positive"}`, "quantity must be positive"},
		{"errors map with slices", `{"errors":{"addressId":["address id is required"],"items":["items must not be empty"]}}`, "addressId: address id is required; items: items must not be empty"},
		{"errors map with strings", `{"errors":{"phone":"phone is invalid"}}`, "phone: phone is invalid"},
		{"json string", `"service unavailable"`, "service unavailable"},
		{"plain text", `upstream exploded`, "upstream exploded"},
		{"empty", ``, ""},
		{"unknown object", `{"code":500}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractMessage([]byte(tc.body)); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIndicatesAbsence(t *testing.T) {
	if !indicatesAbsence("Cart item not found") {
		t.Fatal("expected absence for not-found text")
	}
	if !indicatesAbsence("item does not exist") {
		t.Fatal("expected absence for does-not-exist text")
	}
	if indicatesAbsence("quantity must be positive") {
		t.Fatal("validation text is not absence")
	}
}

func TestIndicatesEmptyCollection(t *testing.T) {
	if !indicatesEmptyCollection("No addresses found") {
		t.Fatal("expected empty-collection signal")
	}
	if !indicatesEmptyCollection("no orders exist for this user") {
		t.Fatal("expected empty-collection signal")
	}
	if indicatesEmptyCollection("address not found") {
		t.Fatal("single-object miss is not an empty collection")
	}
}
