package services

import (
	"context"
	"fmt"

	"nftmarket/internal/models"
	"nftmarket/internal/requests"
)

type PaymentService struct {
	client *ServiceClient
}

func NewPaymentService(client *ServiceClient) *PaymentService {
	return &PaymentService{client: client}
}

func (s *PaymentService) LoadPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.client.Send(ctx, requests.GetCurrencies(), &methods); err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	return methods, nil
}

// PerformPayment pays the order with currencyID. A decoded result with
// Success false is returned without error; the caller decides what it means.
func (s *PaymentService) PerformPayment(ctx context.Context, currencyID string) (models.PaymentResult, error) {
	var res models.PaymentResult
	if err := s.client.Send(ctx, requests.PerformPayment(currencyID), &res); err != nil {
		return models.PaymentResult{}, fmt.Errorf("perform payment: %w", err)
	}
	return res, nil
}

type CatalogService struct {
	client *ServiceClient
}

func NewCatalogService(client *ServiceClient) *CatalogService {
	return &CatalogService{client: client}
}

func (s *CatalogService) LoadCollections(ctx context.Context) ([]models.NftCollection, error) {
	var cols []models.NftCollection
	if err := s.client.Send(ctx, requests.GetCollections(), &cols); err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	return cols, nil
}
