package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/internal/stock"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the authoritative cart of a signed-in user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (types.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (types.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (types.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (types.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Merge(ctx context.Context, userID uuid.UUID, req types.MergeCartRequest) (types.Cart, error)
}

type service struct {
	repo     *Repository
	products *products.Repository
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, productRepo *products.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, products: productRepo, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (types.Cart, error) {
	return s.load(ctx, s.repo, userID)
}

func (s *service) load(ctx context.Context, repo *Repository, userID uuid.UUID) (types.Cart, error) {
	if userID == uuid.Nil {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return types.Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return toCart(rows), nil
}

// AddItem adds quantity units to the line, clamped to stock. An out of stock
// product is rejected because there is nothing to clamp to.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (types.Cart, error) {
	if quantity < 1 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	var out types.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := s.products.WithTx(tx).FindActive(ctx, productID)
		if err != nil {
			return err
		}
		existing, err := repo.Find(ctx, userID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		requested := quantity
		line := &models.CartItem{UserID: userID, ProductID: productID, UnitPrice: product.Price}
		if existing != nil {
			line = existing
			requested += existing.Quantity
		}

		decision, err := stock.Resolve(productID, requested, product.Stock, stock.PolicyClamp)
		if err != nil {
			return err
		}
		if decision.Remove {
			return pkgerrors.StockExceeded(productID, requested, product.Stock)
		}
		line.Quantity = decision.Quantity
		if err := repo.Save(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
		}
		out, err = s.load(ctx, repo, userID)
		return err
	})
	return out, err
}

// UpdateItem sets the line quantity. Zero or less removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (types.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	var out types.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, userID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		product, err := s.products.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			return err
		}

		decision, err := stock.Resolve(productID, quantity, product.Stock, stock.PolicyClamp)
		if err != nil {
			return err
		}
		if decision.Remove {
			if _, err := repo.Delete(ctx, userID, productID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
			}
		} else {
			existing.Quantity = decision.Quantity
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
			}
		}
		out, err = s.load(ctx, repo, userID)
		return err
	})
	return out, err
}

// RemoveItem deletes the line. Removing an absent product is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (types.Cart, error) {
	if _, err := s.repo.Delete(ctx, userID, productID); err != nil {
		return types.Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Merge folds a guest cart into the user's cart. Quantities add up and are
// bounded by current stock. Unknown, inactive and sold out products are skipped.
func (s *service) Merge(ctx context.Context, userID uuid.UUID, req types.MergeCartRequest) (types.Cart, error) {
	wanted := make(map[uuid.UUID]int, len(req.Items))
	order := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil || item.Quantity < 1 {
			continue
		}
		if _, seen := wanted[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		wanted[item.ProductID] += item.Quantity
	}

	var out types.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalog, err := s.products.WithTx(tx).FindByIDs(ctx, order)
		if err != nil {
			return err
		}

		skipped := 0
		for _, productID := range order {
			product, ok := catalog[productID]
			if !ok || !product.IsActive {
				skipped++
				continue
			}
			existing, err := repo.Find(ctx, userID, productID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
			}
			line := &models.CartItem{UserID: userID, ProductID: productID, UnitPrice: product.Price}
			requested := wanted[productID]
			if existing != nil {
				line = existing
				requested += existing.Quantity
			}
			decision, err := stock.Resolve(productID, requested, product.Stock, stock.PolicyClamp)
			if err != nil {
				return err
			}
			if decision.Remove {
				skipped++
				continue
			}
			line.Quantity = decision.Quantity
			if err := repo.Save(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
			}
		}

		if skipped > 0 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"user_id": userID.String(),
				"skipped": skipped,
			}), "cart merge skipped unavailable products")
		}
		out, err = s.load(ctx, repo, userID)
		return err
	})
	return out, err
}

func toCart(rows []models.CartItem) types.Cart {
	cart := types.EmptyCart()
	for _, row := range rows {
		if row.Product == nil {
			continue
		}
		cart.Items = append(cart.Items, products.CartItem(*row.Product, row.UnitPrice, row.Quantity))
	}
	cart.Recompute()
	return cart
}
