package services

import (
	"context"
	"fmt"
	"log/slog"

	"nftmarket/internal/models"
	"nftmarket/internal/requests"
)

// OrderService reads and replaces the single server-side order.
type OrderService struct {
	client *ServiceClient
}

func NewOrderService(client *ServiceClient) *OrderService {
	return &OrderService{client: client}
}

func (s *OrderService) GetOrder(ctx context.Context) (models.Order, error) {
	var order models.Order
	if err := s.client.Send(ctx, requests.GetOrder(), &order); err != nil {
		return models.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// SetOrder replaces the order with exactly nftIDs and returns what the server
// stored.
func (s *OrderService) SetOrder(ctx context.Context, nftIDs []string) (models.Order, error) {
	slog.Debug("Sending order update", "nft_ids", nftIDs)

	var order models.Order
	if err := s.client.Send(ctx, requests.UpdateOrder(nftIDs), &order); err != nil {
		return models.Order{}, fmt.Errorf("set order: %w", err)
	}
	return order, nil
}

// CartService joins the order with NFT details into cart rows.
type CartService struct {
	orders *OrderService
	nfts   *NftService
}

func NewCartService(orders *OrderService, nfts *NftService) *CartService {
	return &CartService{orders: orders, nfts: nfts}
}

// LoadOrder returns the cart rows in arrival order. An empty order returns
// immediately; NFTs that fail to load are left out.
func (s *CartService) LoadOrder(ctx context.Context) ([]models.CartItem, error) {
	order, err := s.orders.GetOrder(ctx)
	if err != nil {
		return nil, err
	}
	if len(order.Nfts) == 0 {
		return []models.CartItem{}, nil
	}

	nfts, partial := s.nfts.LoadNfts(ctx, order.Nfts)
	if partial != nil {
		slog.Warn("Cart loaded with missing items", "requested", len(order.Nfts), "loaded", len(nfts))
	}

	items := make([]models.CartItem, 0, len(nfts))
	for _, n := range nfts {
		items = append(items, models.NewCartItem(n))
	}
	return items, nil
}

func (s *CartService) UpdateOrder(ctx context.Context, nftIDs []string) (models.Order, error) {
	return s.orders.SetOrder(ctx, nftIDs)
}
