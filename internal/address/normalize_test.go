package address

import (
	"testing"
	"time"
)

func TestNormalizeFieldAliases(t *testing.T) {
	raw := []map[string]any{
		{
			"addressId":  float64(17),
			"kind":       "home",
			"street":     "14 Elm Street",
			"pincode":    "560001",
			"mobile":     "+1-555-0101",
			"isDefault":  "true",
			"updatedAt":  "2026-03-02T10:00:00Z",
			"created_at": "2026-01-01T08:00:00Z",
		},
	}

	addrs := Normalize(raw)
	if len(addrs) != 1 {
		t.Fatalf("expected 1 address, got %d", len(addrs))
	}
	addr := addrs[0]
	if addr.ID != 17 {
		t.Fatalf("expected id 17, got %d", addr.ID)
	}
	if addr.Label != "home" {
		t.Fatalf("unexpected label %q", addr.Label)
	}
	if addr.Line != "14 Elm Street" {
		t.Fatalf("unexpected line %q", addr.Line)
	}
	if addr.PostalCode != "560001" {
		t.Fatalf("unexpected postal code %q", addr.PostalCode)
	}
	if addr.Phone != "+1-555-0101" {
		t.Fatalf("unexpected phone %q", addr.Phone)
	}
	if !addr.IsDefault {
		t.Fatal("string-typed default flag should normalize to true")
	}
	if addr.UpdatedAt.IsZero() || addr.CreatedAt.IsZero() {
		t.Fatal("expected timestamps to parse")
	}
}

func TestNormalizeNumericStringID(t *testing.T) {
	addrs := Normalize([]map[string]any{{"id": "42", "line": "x"}})
	if addrs[0].ID != 42 {
		t.Fatalf("expected numeric string id to parse, got %d", addrs[0].ID)
	}
}

func TestNormalizeStringIDBecomesUID(t *testing.T) {
	addrs := Normalize([]map[string]any{{"id": "addr-ui-9", "line": "x"}})
	if addrs[0].ID != 0 {
		t.Fatalf("expected no numeric id, got %d", addrs[0].ID)
	}
	if addrs[0].UID != "addr-ui-9" {
		t.Fatalf("expected UID addr-ui-9, got %q", addrs[0].UID)
	}
}

func TestNormalizeShippingDefaultField(t *testing.T) {
	addrs := Normalize([]map[string]any{{"id": float64(1), "isShippingDefault": true}})
	if !addrs[0].IsDefault {
		t.Fatal("isShippingDefault should count as the default flag")
	}
}

func TestNormalizeOtherDefaultLikeFieldIsHintOnly(t *testing.T) {
	addrs := Normalize([]map[string]any{{"id": float64(1), "defaultBilling": true}})
	if addrs[0].IsDefault {
		t.Fatal("unknown default-like field must not set IsDefault")
	}
	if !addrs[0].DefaultHint {
		t.Fatal("unknown truthy default-like field should set DefaultHint")
	}
}

func TestNormalizeUnixTimestamp(t *testing.T) {
	addrs := Normalize([]map[string]any{{"id": float64(1), "createdAt": float64(1700000000)}})
	want := time.Unix(1700000000, 0).UTC()
	if !addrs[0].CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, addrs[0].CreatedAt)
	}
}

func TestModifiedAtPrefersUpdated(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)
	addr := Address{CreatedAt: created, UpdatedAt: updated}
	if !addr.ModifiedAt().Equal(updated) {
		t.Fatal("expected ModifiedAt to prefer the update timestamp")
	}
}
