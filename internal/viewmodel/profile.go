package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"nftmarket/internal/config"
	"nftmarket/internal/models"
)

var ErrNoWebsite = errors.New("profile has no website")

type ProfileService interface {
	LoadProfile(ctx context.Context, id string) (models.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields models.ProfileFields) (models.Profile, error)
}

type ProfileViewModel struct {
	service ProfileService

	mu      sync.Mutex
	profile models.Profile
	loaded  bool
}

func NewProfileViewModel(service ProfileService) *ProfileViewModel {
	return &ProfileViewModel{service: service}
}

func (vm *ProfileViewModel) Load(ctx context.Context) (models.Profile, error) {
	p, err := vm.service.LoadProfile(ctx, config.ProfileID)
	if err != nil {
		slog.Error("Failed to load profile", "profile_id", config.ProfileID, "error", err)
		return models.Profile{}, err
	}
	vm.set(p)
	return p, nil
}

// Update sends the edited fields and adopts the profile the server returns.
func (vm *ProfileViewModel) Update(ctx context.Context, fields models.ProfileFields) (models.Profile, error) {
	p, err := vm.service.UpdateProfile(ctx, config.ProfileID, fields)
	if err != nil {
		slog.Error("Failed to update profile", "profile_id", config.ProfileID, "error", err)
		return models.Profile{}, err
	}
	vm.set(p)
	return p, nil
}

func (vm *ProfileViewModel) Profile() (models.Profile, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.profile, vm.loaded
}

// SetLikes records the likes a sub-screen ended with, so counts stay current
// without a reload.
func (vm *ProfileViewModel) SetLikes(ids []string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.profile.Likes = slices.Clone(ids)
}

// Counts returns the number of owned and liked NFTs.
func (vm *ProfileViewModel) Counts() (mine, liked int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.profile.Nfts), len(vm.profile.Likes)
}

func (vm *ProfileViewModel) WebsiteURL() (*url.URL, error) {
	vm.mu.Lock()
	website := vm.profile.Website
	vm.mu.Unlock()

	if website == "" {
		return nil, ErrNoWebsite
	}
	u, err := url.ParseRequestURI(website)
	if err != nil {
		return nil, fmt.Errorf("website %q: %w", website, err)
	}
	return u, nil
}

func (vm *ProfileViewModel) set(p models.Profile) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.profile = p
	vm.loaded = true
}

// EditProfile holds the draft of an edit screen.
type EditProfile struct {
	profile models.Profile
}

func NewEditProfile(p models.Profile) *EditProfile {
	return &EditProfile{profile: p}
}

// UpdateAvatar sets the avatar if raw parses as an absolute URL.
func (e *EditProfile) UpdateAvatar(raw string) bool {
	if _, err := url.ParseRequestURI(raw); err != nil {
		return false
	}
	e.profile.Avatar = raw
	return true
}

// Updated returns the fields to send, keeping the current avatar.
func (e *EditProfile) Updated(name, description, website string) models.ProfileFields {
	return models.ProfileFields{
		Name:        name,
		Avatar:      e.profile.Avatar,
		Description: description,
		Website:     website,
	}
}
