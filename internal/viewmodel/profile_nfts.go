package viewmodel

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"nftmarket/internal/models"
	"nftmarket/internal/reconcile"
)

// OrderedNftLoader returns NFTs in the order of ids, skipping failures.
type OrderedNftLoader interface {
	LoadNfts(ctx context.Context, ids []string) ([]models.Nft, error)
}

// NftRow is one line of a profile NFT list.
type NftRow struct {
	Nft       models.Nft
	PriceText string
	Liked     bool
}

type ListView interface {
	RowsUpdated(rows []NftRow)
}

type MyNFTsSort string

const (
	MyNFTsSortPrice  MyNFTsSort = "price"
	MyNFTsSortRating MyNFTsSort = "rating"
	MyNFTsSortName   MyNFTsSort = "name"
)

// SortNfts sorts a copy by price or rating descending, or by name ignoring
// case. Unknown options sort by rating.
func SortNfts(nfts []models.Nft, by MyNFTsSort) []models.Nft {
	out := slices.Clone(nfts)
	switch by {
	case MyNFTsSortPrice:
		slices.SortStableFunc(out, func(a, b models.Nft) int { return cmp.Compare(b.Price, a.Price) })
	case MyNFTsSortName:
		slices.SortStableFunc(out, func(a, b models.Nft) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Nft) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}

// MyNFTsViewModel lists the NFTs the profile owns.
type MyNFTsViewModel struct {
	ids    []string
	loader OrderedNftLoader
	likes  *reconcile.Toggler
	view   ListView

	mu     sync.Mutex
	nfts   []models.Nft
	sortBy MyNFTsSort
}

func NewMyNFTsViewModel(profile models.Profile, loader OrderedNftLoader, likes LikesSyncer, view ListView) *MyNFTsViewModel {
	vm := &MyNFTsViewModel{
		ids:    slices.Clone(profile.Nfts),
		loader: loader,
		view:   view,
		sortBy: MyNFTsSortRating,
	}
	vm.likes = reconcile.NewToggler(reconcile.ActionLike, nil, likes.SetLikes, func(reconcile.Change) { vm.publish() })
	vm.likes.Reset(profile.Likes)
	return vm
}

// Load fetches the owned NFTs. If some fail, the rest are still shown and
// ErrPartialLoad is returned.
func (vm *MyNFTsViewModel) Load(ctx context.Context) error {
	nfts, err := loadProfileNfts(ctx, vm.loader, vm.ids)

	vm.mu.Lock()
	vm.nfts = SortNfts(nfts, vm.sortBy)
	vm.mu.Unlock()

	vm.publish()
	return err
}

// Sort re-sorts the loaded list and remembers the option for later loads.
func (vm *MyNFTsViewModel) Sort(by MyNFTsSort) {
	vm.mu.Lock()
	vm.sortBy = by
	vm.nfts = SortNfts(vm.nfts, by)
	vm.mu.Unlock()

	vm.publish()
}

func (vm *MyNFTsViewModel) SortOption() MyNFTsSort {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sortBy
}

func (vm *MyNFTsViewModel) ToggleLike(ctx context.Context, id string) (bool, error) {
	liked, err := vm.likes.Toggle(ctx, id)
	if err != nil {
		slog.Error("Failed to update like", "nft_id", id, "error", err)
	}
	return liked, err
}

func (vm *MyNFTsViewModel) IsLiked(id string) bool {
	return vm.likes.Has(id)
}

// LikedIDs is the like set to hand back to the profile screen.
func (vm *MyNFTsViewModel) LikedIDs() []string {
	return vm.likes.IDs()
}

func (vm *MyNFTsViewModel) Rows() []NftRow {
	vm.mu.Lock()
	nfts := slices.Clone(vm.nfts)
	vm.mu.Unlock()
	return makeRows(nfts, vm.likes.Has)
}

func (vm *MyNFTsViewModel) publish() {
	if vm.view != nil {
		vm.view.RowsUpdated(vm.Rows())
	}
}

// LikedNFTsViewModel lists the NFTs the profile liked.
type LikedNFTsViewModel struct {
	loader  OrderedNftLoader
	likes   LikesSyncer
	tracker *reconcile.Tracker
	view    ListView

	writeMu sync.Mutex

	mu   sync.Mutex
	ids  []string
	nfts []models.Nft
}

func NewLikedNFTsViewModel(profile models.Profile, loader OrderedNftLoader, likes LikesSyncer, view ListView) *LikedNFTsViewModel {
	return &LikedNFTsViewModel{
		loader:  loader,
		likes:   likes,
		tracker: reconcile.NewTracker(),
		view:    view,
		ids:     slices.Clone(profile.Likes),
	}
}

func (vm *LikedNFTsViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	ids := slices.Clone(vm.ids)
	vm.mu.Unlock()

	nfts, err := loadProfileNfts(ctx, vm.loader, ids)

	vm.mu.Lock()
	vm.nfts = nfts
	vm.mu.Unlock()

	vm.publish()
	return err
}

// Unlike sends the like list without id. The row is removed only once the
// server confirms; rows are then kept for the ids the server still lists.
// Unlikes of different rows are sent one at a time.
func (vm *LikedNFTsViewModel) Unlike(ctx context.Context, id string) error {
	vm.mu.Lock()
	listed := slices.ContainsFunc(vm.nfts, func(n models.Nft) bool { return n.ID == id })
	vm.mu.Unlock()
	if !listed {
		return ErrItemNotFound
	}
	if !vm.tracker.Begin(reconcile.ActionLike, id) {
		return reconcile.ErrRequestInFlight
	}

	vm.writeMu.Lock()
	defer vm.writeMu.Unlock()

	vm.mu.Lock()
	desired := slices.DeleteFunc(slices.Clone(vm.ids), func(s string) bool { return s == id })
	vm.mu.Unlock()

	server, err := vm.likes.SetLikes(ctx, desired)
	vm.tracker.Finish(reconcile.ActionLike, id, err)
	if err != nil {
		slog.Error("Failed to remove like", "nft_id", id, "error", err)
		return err
	}

	kept := reconcile.NewIDSet(server...)
	vm.mu.Lock()
	vm.ids = slices.Clone(server)
	vm.nfts = slices.DeleteFunc(slices.Clone(vm.nfts), func(n models.Nft) bool { return !kept.Has(n.ID) })
	vm.mu.Unlock()

	vm.publish()
	return nil
}

func (vm *LikedNFTsViewModel) UnlikeState(id string) reconcile.RequestState {
	return vm.tracker.State(reconcile.ActionLike, id)
}

func (vm *LikedNFTsViewModel) LikedIDs() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.ids)
}

func (vm *LikedNFTsViewModel) Rows() []NftRow {
	vm.mu.Lock()
	nfts := slices.Clone(vm.nfts)
	vm.mu.Unlock()
	return makeRows(nfts, func(string) bool { return true })
}

func (vm *LikedNFTsViewModel) publish() {
	if vm.view != nil {
		vm.view.RowsUpdated(vm.Rows())
	}
}

func loadProfileNfts(ctx context.Context, loader OrderedNftLoader, ids []string) ([]models.Nft, error) {
	if len(ids) == 0 {
		return []models.Nft{}, nil
	}
	nfts, err := loader.LoadNfts(ctx, ids)
	if err != nil {
		slog.Warn("Profile NFTs loaded with failures", "requested", len(ids), "loaded", len(nfts), "error", err)
		return nfts, fmt.Errorf("%w: %d of %d", ErrPartialLoad, len(ids)-len(nfts), len(ids))
	}
	return nfts, nil
}

func makeRows(nfts []models.Nft, liked func(string) bool) []NftRow {
	rows := make([]NftRow, 0, len(nfts))
	for _, n := range nfts {
		rows = append(rows, NftRow{Nft: n, PriceText: models.FormatPrice(n.Price), Liked: liked(n.ID)})
	}
	return rows
}
