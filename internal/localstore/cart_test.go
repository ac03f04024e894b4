package localstore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-commerce/internal/notify"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

func cartItem(price int64, stock int) types.CartItem {
	return types.CartItem{
		ProductID:   uuid.New(),
		ProductName: "Linen Shirt",
		ProductSlug: "linen-shirt",
		Price:       price,
		Stock:       stock,
	}
}

func TestAddItemClampsToStock(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{Storage: NewMemoryStorage()})

	item := cartItem(100000, 5)
	cart := store.AddItem(ctx, item, 10)

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity clamped to 5, got %+v", cart.Items)
	}
	if got := store.Get(ctx).Items[0].Quantity; got != 5 {
		t.Fatalf("expected persisted quantity 5, got %d", got)
	}
}

func TestAddItemAccumulatesExistingLine(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	item := cartItem(20000, 4)
	store.AddItem(ctx, item, 1)
	store.AddItem(ctx, item, 2)
	cart := store.AddItem(ctx, item, 5)

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 4 {
		t.Fatalf("expected accumulated quantity clamped to 4, got %d", cart.Items[0].Quantity)
	}
	if cart.Total != 80000 || cart.TotalItems != 4 {
		t.Fatalf("unexpected aggregates %d/%d", cart.Total, cart.TotalItems)
	}
}

func TestAddItemSoldOutIsNotAdded(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	cart := store.AddItem(ctx, cartItem(100, 0), 1)
	if !cart.IsEmpty() {
		t.Fatalf("sold out product must not be added, got %+v", cart.Items)
	}
	if store.Snapshot(ctx) != nil {
		t.Fatal("no record should be written for a no-op add")
	}
}

func TestAggregatesHoldAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	a := cartItem(12500, 10)
	b := cartItem(9900, 3)
	c := cartItem(1, 100)

	steps := []func() types.Cart{
		func() types.Cart { return store.AddItem(ctx, a, 2) },
		func() types.Cart { return store.AddItem(ctx, b, 7) },
		func() types.Cart { return store.AddItem(ctx, c, 40) },
		func() types.Cart { return store.UpdateItemQuantity(ctx, a.ProductID, 9) },
		func() types.Cart { return store.UpdateItemQuantity(ctx, b.ProductID, 0) },
		func() types.Cart { return store.RemoveItem(ctx, c.ProductID) },
		func() types.Cart { return store.AddItem(ctx, b, 1) },
		func() types.Cart { return store.UpdateItemQuantity(ctx, a.ProductID, 50) },
	}
	for i, step := range steps {
		cart := step()
		assertAggregates(t, i, cart)
		assertAggregates(t, i, store.Get(ctx))
	}
}

func assertAggregates(t *testing.T, step int, cart types.Cart) {
	t.Helper()
	var total int64
	var count int
	for _, item := range cart.Items {
		if item.Quantity < 1 || item.Quantity > item.Stock {
			t.Fatalf("step %d: quantity %d outside [1,%d]", step, item.Quantity, item.Stock)
		}
		total += item.Price * int64(item.Quantity)
		count += item.Quantity
	}
	if cart.Total != total || cart.TotalItems != count {
		t.Fatalf("step %d: aggregates %d/%d, want %d/%d", step, cart.Total, cart.TotalItems, total, count)
	}
}

func TestUpdateItemQuantityNonPositiveRemoves(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	item := cartItem(500, 5)
	store.AddItem(ctx, item, 2)
	cart := store.UpdateItemQuantity(ctx, item.ProductID, -1)

	if store.HasItem(ctx, item.ProductID) || !cart.IsEmpty() {
		t.Fatal("expected item to be removed")
	}
}

func TestUpdateUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})
	item := cartItem(500, 5)
	store.AddItem(ctx, item, 2)
	before := store.Snapshot(ctx)

	store.UpdateItemQuantity(ctx, uuid.New(), 3)

	if !bytes.Equal(before, store.Snapshot(ctx)) {
		t.Fatal("updating an unknown product must not change the record")
	}
}

func TestStrictVariantsRejectWithoutMutating(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	item := cartItem(1000, 3)
	store.AddItem(ctx, item, 2)
	before := store.Snapshot(ctx)

	_, err := store.AddItemStrict(ctx, item, 2)
	if !pkgerrors.Is(err, pkgerrors.CodeStockExceeded) {
		t.Fatalf("expected STOCK_EXCEEDED, got %v", err)
	}
	if available, ok := pkgerrors.AvailableStock(err); !ok || available != 3 {
		t.Fatalf("expected available stock 3, got %d", available)
	}

	_, err = store.UpdateItemQuantityStrict(ctx, item.ProductID, 4)
	if !pkgerrors.Is(err, pkgerrors.CodeStockExceeded) {
		t.Fatalf("expected STOCK_EXCEEDED on update, got %v", err)
	}
	if !bytes.Equal(before, store.Snapshot(ctx)) {
		t.Fatal("rejected mutation changed the stored record")
	}

	cart, err := store.UpdateItemQuantityStrict(ctx, item.ProductID, 3)
	if err != nil || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected strict update within stock to pass, got %+v %v", cart.Items, err)
	}
}

func TestSaveNormalizesAndRecomputes(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{})

	keep := cartItem(200, 2)
	keep.Quantity = 9
	drop := cartItem(300, 5)
	drop.Quantity = 0

	cart := store.Save(ctx, types.Cart{Items: []types.CartItem{keep, drop}, Total: 1, TotalItems: 99})
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", cart.Items)
	}
	if cart.Total != 400 || cart.TotalItems != 2 {
		t.Fatalf("aggregates not recomputed: %d/%d", cart.Total, cart.TotalItems)
	}
}

func TestClearIsIdempotentAndSignals(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewMemoryBus()
	sub := bus.Subscribe(notify.SignalCartChanged)
	defer sub.Close()
	store := NewCartStore(Options{Bus: bus})

	store.AddItem(ctx, cartItem(100, 1), 1)
	<-sub.C()

	store.Clear(ctx)
	store.Clear(ctx)
	<-sub.C()

	if !store.IsEmpty(ctx) || store.ItemCount(ctx) != 0 {
		t.Fatal("expected empty cart after clear")
	}
	if store.Snapshot(ctx) != nil {
		t.Fatal("expected record to be deleted")
	}
}

func TestCorruptRecordReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.Set(ctx, Key{Collection: "cart"}, []byte("{not json"))
	store := NewCartStore(Options{Storage: storage})

	if !store.IsEmpty(ctx) {
		t.Fatal("corrupt record should read as empty")
	}
	cart := store.AddItem(ctx, cartItem(100, 2), 1)
	if len(cart.Items) != 1 {
		t.Fatal("a write after a corrupt read should start from empty")
	}
}

func TestStorageFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(Options{Storage: failingStorage{err: errors.New("quota exceeded")}})

	item := cartItem(700, 4)
	cart := store.AddItem(ctx, item, 2)

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 || cart.Total != 1400 {
		t.Fatalf("expected in-memory result despite write failure, got %+v", cart)
	}
	if !store.IsEmpty(ctx) {
		t.Fatal("read failure should degrade to empty")
	}
	if err := store.Clear(ctx); !pkgerrors.Is(err, pkgerrors.CodeStorageUnavailable) {
		t.Fatalf("expected STORAGE_UNAVAILABLE when nothing can be written, got %v", err)
	}
}

func TestClearOverwritesWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	storage := undeletableStorage{MemoryStorage: NewMemoryStorage()}
	store := NewCartStore(Options{Storage: storage})

	store.AddItem(ctx, cartItem(300, 5), 2)
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear should fall back to an empty record: %v", err)
	}
	if !store.IsEmpty(ctx) {
		t.Fatal("expected cart to read empty after fallback clear")
	}
	if store.Snapshot(ctx) == nil {
		t.Fatal("expected the empty record to be persisted in place of the delete")
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	alice := NewCartStore(Options{Storage: storage, Namespace: "alice"})
	bob := NewCartStore(Options{Storage: storage, Namespace: "bob"})

	alice.AddItem(ctx, cartItem(100, 5), 1)

	if !bob.IsEmpty(ctx) {
		t.Fatal("namespaces must not share records")
	}
}

type failingStorage struct {
	err error
}

func (f failingStorage) Get(context.Context, Key) ([]byte, error) { return nil, f.err }

func (f failingStorage) Set(context.Context, Key, []byte) error { return f.err }

func (f failingStorage) Delete(context.Context, Key) error { return f.err }

type undeletableStorage struct {
	*MemoryStorage
}

func (undeletableStorage) Delete(context.Context, Key) error { return errors.New("delete not permitted") }
