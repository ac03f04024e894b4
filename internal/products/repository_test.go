package products

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-commerce/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
)

func TestRepository_FindActiveHidesInactive(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := dbtest.MustCreateProduct(t, db, "Trail Shoe", 120000, 4)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := repo.FindByID(ctx, product.ID); err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	_, err := repo.FindActive(ctx, product.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
	_, err = repo.FindByID(ctx, uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestRepository_FindByIDs(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	a := dbtest.MustCreateProduct(t, db, "Sock", 9000, 10)
	b := dbtest.MustCreateProduct(t, db, "Cap", 15000, 2)

	got, err := repo.FindByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("FindByIDs() error = %v", err)
	}
	if len(got) != 2 || got[a.ID].Price != 9000 || got[b.ID].Stock != 2 {
		t.Fatalf("unexpected products: %+v", got)
	}
}

func TestRepository_DecrementStock(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, db, "Bottle", 5000, 3)

	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	if err != nil || !ok {
		t.Fatalf("DecrementStock() = %v, %v", ok, err)
	}
	ok, err = repo.DecrementStock(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("DecrementStock() error = %v", err)
	}
	if ok {
		t.Fatal("expected insufficient stock to leave row untouched")
	}
	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", reloaded.Stock)
	}
}

func TestCartItemDenormalizes(t *testing.T) {
	image := "https://cdn.example.com/p.jpg"
	product := models.Product{ID: uuid.New(), Name: "Lamp", Slug: "lamp", ImageURL: &image, Price: 40000, Stock: 7}
	item := CartItem(product, 38000, 2)
	if item.Price != 38000 || item.Stock != 7 || item.ProductImage != image || item.Quantity != 2 {
		t.Fatalf("unexpected cart item: %+v", item)
	}
	product.ImageURL = nil
	if CartItem(product, 1, 1).ProductImage != "" {
		t.Fatal("expected empty image when product has none")
	}
}
