package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	MaxQuantity          = 99
	defaultMaxConcurrent = 8
)

type CartService struct {
	repo          repository.CartRepository
	products      *ProductHandler
	cache         cache.TotalsCache
	logger        *zap.Logger
	sfg           singleflight.Group // collapses concurrent aggregations per user
	maxConcurrent int
	timeout       time.Duration
}

func NewCartService(repo repository.CartRepository, products *ProductHandler, totals cache.TotalsCache, logger *zap.Logger, timeout time.Duration) *CartService {
	return &CartService{
		repo:          repo,
		products:      products,
		cache:         totals,
		logger:        logger,
		maxConcurrent: defaultMaxConcurrent,
		timeout:       timeout,
	}
}

// Aggregate returns the user's cart entries joined with their products, in
// insertion order. Entries whose product no longer exists are returned with a
// nil Product.
//
// Concurrent calls for the same user share one load. The shared load is not
// tied to any single caller's cancellation and is bounded by the service
// timeout; a caller whose context ends stops waiting on it.
func (s *CartService) Aggregate(ctx context.Context, userID string) ([]domain.LineItem, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	ch := s.sfg.DoChan(userID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.aggregate(loadCtx, userID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, storeError("aggregate cart", ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]domain.LineItem)
	items := make([]domain.LineItem, len(shared))
	copy(items, shared)
	return items, nil
}

func (s *CartService) aggregate(ctx context.Context, userID string) ([]domain.LineItem, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	entries, err := s.repo.ListEntries(listCtx, userID)
	cancel()
	if err != nil {
		return nil, storeError("list cart entries", err)
	}

	items := make([]domain.LineItem, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			product, err := s.products.get(gctx, entry.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				s.logger.Warn("cart entry references missing product",
					zap.String("user_id", userID),
					zap.String("entry_id", entry.ID),
					zap.String("product_id", entry.ProductID),
				)
				items[i] = domain.LineItem{Entry: entry}
				return nil
			}
			if err != nil {
				return storeError(fmt.Sprintf("get product %s", entry.ProductID), err)
			}
			items[i] = domain.LineItem{Entry: entry, Product: product}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID, size string, quantity int) ([]domain.LineItem, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.get(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, storeError("get product", err)
	}

	if size == "" {
		if len(product.StockBySize) > 0 {
			return nil, ErrSizeRequired
		}
		size = domain.DefaultItemSize
	}
	if !product.InStock(size) {
		return nil, ErrOutOfStock
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.repo.AddEntry(writeCtx, &domain.CartEntry{
		UserID:            userID,
		ProductID:         productID,
		Quantity:          quantity,
		SelectedSize:      size,
		UnitPriceSnapshot: product.EffectivePrice(),
	})
	if err != nil {
		s.logger.Error("repo add entry failed", zap.String("user_id", userID), zap.Error(err))
		return nil, storeError("add cart entry", err)
	}

	s.invalidateHint(userID)
	return s.aggregate(ctx, userID)
}

// UpdateQuantity sets an entry's quantity. A quantity of zero or less removes the entry.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) ([]domain.LineItem, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, entryID)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.repo.UpdateQuantity(writeCtx, userID, entryID, quantity)
	if errors.Is(err, repository.ErrCartEntryNotFound) {
		return nil, ErrCartEntryNotFound
	}
	if err != nil {
		s.logger.Error("repo update quantity failed", zap.String("entry_id", entryID), zap.Error(err))
		return nil, storeError("update cart entry", err)
	}

	s.invalidateHint(userID)
	return s.aggregate(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, entryID string) ([]domain.LineItem, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.repo.DeleteEntry(writeCtx, userID, entryID)
	if errors.Is(err, repository.ErrCartEntryNotFound) {
		return nil, ErrCartEntryNotFound
	}
	if err != nil {
		s.logger.Error("repo delete entry failed", zap.String("entry_id", entryID), zap.Error(err))
		return nil, storeError("delete cart entry", err)
	}

	s.invalidateHint(userID)
	return s.aggregate(ctx, userID)
}

func (s *CartService) invalidateHint(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("totals hint invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
