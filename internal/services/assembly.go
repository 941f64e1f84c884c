package services

import (
	"nftmarket/internal/cache"
	"nftmarket/internal/config"
)

// Assembly wires every domain service over one ServiceClient.
type Assembly struct {
	Client  *ServiceClient
	Nfts    *NftService
	Orders  *OrderService
	Cart    *CartService
	Likes   *LikesService
	Profile *ProfileService
	Payment *PaymentService
	Catalog *CatalogService
}

func NewAssembly(cfg *config.Config, storage cache.Storage, opts ...Option) *Assembly {
	client := NewServiceClient(cfg, opts...)
	nfts := NewNftService(client, storage, cfg.FanoutLimit)
	orders := NewOrderService(client)

	return &Assembly{
		Client:  client,
		Nfts:    nfts,
		Orders:  orders,
		Cart:    NewCartService(orders, nfts),
		Likes:   NewLikesService(client),
		Profile: NewProfileService(client, nfts),
		Payment: NewPaymentService(client),
		Catalog: NewCatalogService(client),
	}
}
