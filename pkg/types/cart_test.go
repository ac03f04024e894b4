package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestCartRecompute(t *testing.T) {
	t.Parallel()

	cart := Cart{Items: []CartItem{
		{ProductID: uuid.New(), Price: 125000, Quantity: 2},
		{ProductID: uuid.New(), Price: 50000, Quantity: 3},
	}}
	cart.Recompute()

	if cart.Total != 400000 {
		t.Fatalf("expected total 400000, got %d", cart.Total)
	}
	if cart.TotalItems != 5 {
		t.Fatalf("expected 5 items, got %d", cart.TotalItems)
	}
}

func TestEmptyRecordsSerializeWithItemsArray(t *testing.T) {
	t.Parallel()

	var cart Cart
	cart.Recompute()
	raw, err := json.Marshal(cart)
	if err != nil {
		t.Fatalf("marshal cart: %v", err)
	}
	if string(raw) != `{"items":[],"total":0,"total_items":0}` {
		t.Fatalf("unexpected cart record %s", raw)
	}

	var wishlist Wishlist
	wishlist.Recompute()
	raw, err = json.Marshal(wishlist)
	if err != nil {
		t.Fatalf("marshal wishlist: %v", err)
	}
	if string(raw) != `{"items":[],"total_items":0}` {
		t.Fatalf("unexpected wishlist record %s", raw)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	cart := Cart{Items: []CartItem{{ProductID: id, Price: 10, Quantity: 1}}}
	clone := cart.Clone()
	clone.Items[0].Quantity = 9

	if cart.Items[0].Quantity != 1 {
		t.Fatal("clone mutated the original cart")
	}
	if cart.Index(id) != 0 || cart.Index(uuid.New()) != -1 {
		t.Fatal("unexpected index lookup")
	}
}
