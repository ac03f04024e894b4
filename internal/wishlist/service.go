package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (types.Wishlist, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (types.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (types.Wishlist, error)
	Merge(ctx context.Context, userID uuid.UUID, req types.MergeWishlistRequest) (types.Wishlist, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	ProductRepo  *products.Repository
	Tx           txRunner
	Now          func() time.Time
}

type service struct {
	wishlistRepo *Repository
	productRepo  *products.Repository
	tx           txRunner
	now          func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		productRepo:  params.ProductRepo,
		tx:           params.Tx,
		now:          now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (types.Wishlist, error) {
	return s.load(ctx, s.wishlistRepo, userID)
}

func (s *service) load(ctx context.Context, repo *Repository, userID uuid.UUID) (types.Wishlist, error) {
	if userID == uuid.Nil {
		return types.Wishlist{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return types.Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return toWishlist(rows), nil
}

// AddItem ensures the product exists and adds it to the wishlist. Adding a
// product twice keeps the first entry.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (types.Wishlist, error) {
	if productID == uuid.Nil {
		return types.Wishlist{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.productRepo.FindActive(ctx, productID); err != nil {
		return types.Wishlist{}, err
	}
	if err := s.wishlistRepo.AddItem(ctx, userID, productID, s.now().UTC()); err != nil {
		return types.Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (types.Wishlist, error) {
	if err := s.wishlistRepo.RemoveItem(ctx, userID, productID); err != nil {
		return types.Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return s.Get(ctx, userID)
}

// Merge unions the guest wishlist into the user's. Entries already present
// keep their added-at; unknown or inactive products are skipped.
func (s *service) Merge(ctx context.Context, userID uuid.UUID, req types.MergeWishlistRequest) (types.Wishlist, error) {
	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	seen := make(map[uuid.UUID]struct{}, len(req.ProductIDs))
	for _, entry := range req.ProductIDs {
		if entry.ProductID == uuid.Nil {
			continue
		}
		if _, dup := seen[entry.ProductID]; dup {
			continue
		}
		seen[entry.ProductID] = struct{}{}
		ids = append(ids, entry.ProductID)
	}

	var out types.Wishlist
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.wishlistRepo.WithTx(tx)
		catalog, err := s.productRepo.WithTx(tx).FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		for _, productID := range ids {
			product, ok := catalog[productID]
			if !ok || !product.IsActive {
				continue
			}
			existing, err := repo.Find(ctx, userID, productID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist item")
			}
			if existing != nil {
				continue
			}
			if err := repo.AddItem(ctx, userID, productID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge wishlist item")
			}
		}
		out, err = s.load(ctx, repo, userID)
		return err
	})
	return out, err
}

func toWishlist(rows []models.WishlistItem) types.Wishlist {
	list := types.EmptyWishlist()
	for _, row := range rows {
		if row.Product == nil {
			continue
		}
		list.Items = append(list.Items, products.WishlistItem(*row.Product, row.CreatedAt))
	}
	list.Recompute()
	return list
}
