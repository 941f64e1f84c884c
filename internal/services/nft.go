package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"nftmarket/internal/cache"
	"nftmarket/internal/models"
	"nftmarket/internal/requests"
)

type NftService struct {
	client  *ServiceClient
	storage cache.Storage
	limit   int
}

func NewNftService(client *ServiceClient, storage cache.Storage, fanoutLimit int) *NftService {
	if storage == nil {
		storage = cache.NewMemory()
	}
	if fanoutLimit < 1 {
		fanoutLimit = 1
	}
	return &NftService{client: client, storage: storage, limit: fanoutLimit}
}

// LoadNft returns the NFT from the cache, fetching and storing it on a miss.
func (s *NftService) LoadNft(ctx context.Context, id string) (models.Nft, error) {
	nft, err := s.storage.Get(ctx, id)
	if err == nil {
		return nft, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("NFT cache read failed", "nft_id", id, "error", err)
	}

	if err := s.client.Send(ctx, requests.GetNft(id), &nft); err != nil {
		return models.Nft{}, fmt.Errorf("load nft %s: %w", id, err)
	}

	if err := s.storage.Set(ctx, nft); err != nil {
		slog.Warn("NFT cache write failed", "nft_id", id, "error", err)
	}
	return nft, nil
}

// LoadNfts fetches all ids concurrently. Results are in arrival order, not
// request order. Individual failures are logged, omitted from the result and
// returned joined as the second value; they never cancel sibling fetches.
func (s *NftService) LoadNfts(ctx context.Context, ids []string) ([]models.Nft, error) {
	var (
		mu     sync.Mutex
		loaded = make([]models.Nft, 0, len(ids))
		errs   []error
	)

	g := new(errgroup.Group)
	g.SetLimit(s.limit)

	for _, id := range ids {
		g.Go(func() error {
			nft, err := s.LoadNft(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("NFT load failed", "nft_id", id, "error", err)
				errs = append(errs, err)
				return nil
			}
			loaded = append(loaded, nft)
			return nil
		})
	}
	_ = g.Wait()

	return loaded, errors.Join(errs...)
}

// LoadNftsOrdered is LoadNfts with results kept in the order of ids.
func (s *NftService) LoadNftsOrdered(ctx context.Context, ids []string) ([]models.Nft, error) {
	var (
		slots = make([]*models.Nft, len(ids))
		mu    sync.Mutex
		errs  []error
	)

	g := new(errgroup.Group)
	g.SetLimit(s.limit)

	for i, id := range ids {
		g.Go(func() error {
			nft, err := s.LoadNft(ctx, id)
			if err != nil {
				slog.Warn("NFT load failed", "nft_id", id, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			slots[i] = &nft
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Nft, 0, len(ids))
	for _, n := range slots {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out, errors.Join(errs...)
}

func (s *NftService) ClearCache(ctx context.Context) error {
	return s.storage.Clear(ctx)
}
