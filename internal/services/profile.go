package services

import (
	"context"
	"fmt"

	"nftmarket/internal/config"
	"nftmarket/internal/models"
	"nftmarket/internal/requests"
)

type ProfileService struct {
	client *ServiceClient
	nfts   *NftService
}

func NewProfileService(client *ServiceClient, nfts *NftService) *ProfileService {
	return &ProfileService{client: client, nfts: nfts}
}

func (s *ProfileService) LoadProfile(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	if err := s.client.Send(ctx, requests.GetProfile(id), &p); err != nil {
		return models.Profile{}, fmt.Errorf("load profile %s: %w", id, err)
	}
	return p, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id string, fields models.ProfileFields) (models.Profile, error) {
	var p models.Profile
	if err := s.client.Send(ctx, requests.UpdateProfile(id, fields), &p); err != nil {
		return models.Profile{}, fmt.Errorf("update profile %s: %w", id, err)
	}
	return p, nil
}

func (s *ProfileService) LoadNfts(ctx context.Context, ids []string) ([]models.Nft, error) {
	return s.nfts.LoadNftsOrdered(ctx, ids)
}

// LikesService reads and replaces the profile's liked NFT ids.
type LikesService struct {
	client *ServiceClient
}

func NewLikesService(client *ServiceClient) *LikesService {
	return &LikesService{client: client}
}

func (s *LikesService) GetLikes(ctx context.Context) ([]string, error) {
	var p models.Profile
	if err := s.client.Send(ctx, requests.GetProfile(config.ProfileID), &p); err != nil {
		return nil, fmt.Errorf("get likes: %w", err)
	}
	return p.Likes, nil
}

// SetLikes replaces the likes with exactly nftIDs and returns the server's list.
func (s *LikesService) SetLikes(ctx context.Context, nftIDs []string) ([]string, error) {
	var p models.Profile
	if err := s.client.Send(ctx, requests.SetLikes(config.ProfileID, nftIDs), &p); err != nil {
		return nil, fmt.Errorf("set likes: %w", err)
	}
	return p.Likes, nil
}
