package backend

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"nftmarket/internal/config"
	"nftmarket/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

type Seed struct {
	Collections []models.NftCollection `yaml:"collections"`
	Nfts        []models.Nft           `yaml:"nfts"`
	Profile     models.Profile         `yaml:"profile"`
	Order       models.Order           `yaml:"order"`
	Currencies  []models.PaymentMethod `yaml:"currencies"`
}

func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// LoadSeed reads a seed file, or the embedded default when path is empty.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return ParseSeed(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// Store is the backend's in-memory state for one user.
type Store struct {
	mu          sync.RWMutex
	collections []models.NftCollection
	nfts        map[string]models.Nft
	profile     models.Profile
	order       models.Order
	currencies  []models.PaymentMethod
}

func NewStore(seed Seed) *Store {
	s := &Store{
		collections: seed.Collections,
		nfts:        make(map[string]models.Nft, len(seed.Nfts)),
		profile:     seed.Profile,
		order:       seed.Order,
		currencies:  seed.Currencies,
	}
	for _, n := range seed.Nfts {
		s.nfts[n.ID] = n
	}
	if s.order.ID == "" {
		s.order.ID = config.OrderID
	}
	if s.profile.ID == "" {
		s.profile.ID = config.ProfileID
	}
	s.order.Nfts = s.normalize(s.order.Nfts)
	s.profile.Likes = s.normalize(s.profile.Likes)
	return s
}

func (s *Store) Collections() []models.NftCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.collections)
}

func (s *Store) Nft(id string) (models.Nft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nfts[id]
	return n, ok
}

func (s *Store) Order() models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrder(s.order)
}

// SetOrder replaces the order. Unknown and duplicate ids are dropped.
func (s *Store) SetOrder(ids []string) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Nfts = s.normalize(ids)
	return copyOrder(s.order)
}

func (s *Store) Profile() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProfile(s.profile)
}

// ProfilePatch holds the fields present in an update; nil means untouched.
type ProfilePatch struct {
	Name        *string
	Avatar      *string
	Description *string
	Website     *string
	Likes       []string
	SetLikes    bool
}

func (s *Store) UpdateProfile(p ProfilePatch) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name != nil {
		s.profile.Name = *p.Name
	}
	if p.Avatar != nil {
		s.profile.Avatar = *p.Avatar
	}
	if p.Description != nil {
		s.profile.Description = *p.Description
	}
	if p.Website != nil {
		s.profile.Website = *p.Website
	}
	if p.SetLikes {
		s.profile.Likes = s.normalize(p.Likes)
	}
	return copyProfile(s.profile)
}

func (s *Store) Currencies() []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.currencies)
}

// Pay succeeds for a known currency. The order is left for the client to clear.
func (s *Store) Pay(currencyID string) models.PaymentResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := slices.ContainsFunc(s.currencies, func(c models.PaymentMethod) bool {
		return c.ID == currencyID
	})
	return models.PaymentResult{
		Success: known,
		OrderID: s.order.ID,
		ID:      uuid.NewString(),
	}
}

func (s *Store) normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := s.nfts[id]; !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func copyOrder(o models.Order) models.Order {
	o.Nfts = slices.Clone(o.Nfts)
	if o.Nfts == nil {
		o.Nfts = []string{}
	}
	return o
}

func copyProfile(p models.Profile) models.Profile {
	p.Nfts = slices.Clone(p.Nfts)
	p.Likes = slices.Clone(p.Likes)
	if p.Nfts == nil {
		p.Nfts = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return p
}
