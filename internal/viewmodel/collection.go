package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"nftmarket/internal/models"
	"nftmarket/internal/reconcile"
)

// NftLoader fetches NFT details. LoadNfts returns what loaded plus the
// joined errors of what did not.
type NftLoader interface {
	LoadNfts(ctx context.Context, ids []string) ([]models.Nft, error)
	ClearCache(ctx context.Context) error
}

type LikesSyncer interface {
	GetLikes(ctx context.Context) ([]string, error)
	SetLikes(ctx context.Context, nftIDs []string) ([]string, error)
}

type OrderSyncer interface {
	GetOrder(ctx context.Context) (models.Order, error)
	SetOrder(ctx context.Context, nftIDs []string) (models.Order, error)
}

// Cell is everything a collection tile renders.
type Cell struct {
	ID          string
	Name        string
	Image       string
	Rating      int
	Price       float64
	Liked       bool
	InCart      bool
	LikeEnabled bool
	CartEnabled bool
}

// CollectionView receives whole-list and per-cell updates. CellFailed is
// scoped to one tile; other tiles stay interactive.
type CollectionView interface {
	CollectionLoaded(cells []Cell)
	CellUpdated(cell Cell)
	CellFailed(cell Cell, action reconcile.Action, em ErrorModel)
}

type CollectionViewModel struct {
	collection models.NftCollection
	nfts       NftLoader
	view       CollectionView
	tracker    *reconcile.Tracker
	likes      *reconcile.Toggler
	cart       *reconcile.Toggler
	likesSrc   LikesSyncer
	ordersSrc  OrderSyncer

	mu     sync.Mutex
	loaded []models.Nft
}

func NewCollectionViewModel(
	collection models.NftCollection,
	nfts NftLoader,
	likes LikesSyncer,
	orders OrderSyncer,
	view CollectionView,
) *CollectionViewModel {
	vm := &CollectionViewModel{
		collection: collection,
		nfts:       nfts,
		view:       view,
		tracker:    reconcile.NewTracker(),
		likesSrc:   likes,
		ordersSrc:  orders,
	}

	syncOrder := func(ctx context.Context, desired []string) ([]string, error) {
		order, err := orders.SetOrder(ctx, desired)
		if err != nil {
			return nil, err
		}
		return order.Nfts, nil
	}

	vm.likes = reconcile.NewToggler(reconcile.ActionLike, vm.tracker, likes.SetLikes, vm.onChange)
	vm.cart = reconcile.NewToggler(reconcile.ActionCart, vm.tracker, syncOrder, vm.onChange)
	return vm
}

// Load refreshes likes and cart membership, drops cached NFT details and
// fetches the collection's NFTs. Cells come back in arrival order. Failures
// of individual fetches are logged and those NFTs are left out.
func (vm *CollectionViewModel) Load(ctx context.Context) error {
	if likes, err := vm.likesSrc.GetLikes(ctx); err != nil {
		slog.Error("Failed to load likes", "collection_id", vm.collection.ID, "error", err)
	} else {
		vm.likes.Reset(likes)
	}

	if order, err := vm.ordersSrc.GetOrder(ctx); err != nil {
		slog.Error("Failed to load order", "collection_id", vm.collection.ID, "error", err)
	} else {
		vm.cart.Reset(order.Nfts)
	}

	if err := vm.nfts.ClearCache(ctx); err != nil {
		slog.Warn("Failed to clear NFT cache", "error", err)
	}

	loaded, partial := vm.nfts.LoadNfts(ctx, vm.collection.Nfts)
	if partial != nil {
		slog.Warn("Collection loaded with missing NFTs",
			"collection_id", vm.collection.ID,
			"requested", len(vm.collection.Nfts),
			"loaded", len(loaded),
			"error", partial,
		)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vm.mu.Lock()
	vm.loaded = loaded
	vm.mu.Unlock()
	vm.tracker.Reset()

	if vm.view != nil {
		vm.view.CollectionLoaded(vm.Cells())
	}
	return nil
}

func (vm *CollectionViewModel) Collection() models.NftCollection {
	return vm.collection
}

func (vm *CollectionViewModel) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.loaded)
}

func (vm *CollectionViewModel) Cells() []Cell {
	vm.mu.Lock()
	nfts := slices.Clone(vm.loaded)
	vm.mu.Unlock()

	cells := make([]Cell, 0, len(nfts))
	for _, n := range nfts {
		cells = append(cells, vm.cellFor(n))
	}
	return cells
}

// Cell returns the tile at index. Its state comes from the view model, so a
// recycled tile always shows the item it is bound to.
func (vm *CollectionViewModel) Cell(index int) (Cell, error) {
	vm.mu.Lock()
	if index < 0 || index >= len(vm.loaded) {
		n := len(vm.loaded)
		vm.mu.Unlock()
		return Cell{}, fmt.Errorf("cell %d of %d: %w", index, n, ErrItemNotFound)
	}
	nft := vm.loaded[index]
	vm.mu.Unlock()
	return vm.cellFor(nft), nil
}

func (vm *CollectionViewModel) IsLiked(id string) bool {
	return vm.likes.Has(id)
}

func (vm *CollectionViewModel) IsInCart(id string) bool {
	return vm.cart.Has(id)
}

func (vm *CollectionViewModel) LikeState(id string) reconcile.RequestState {
	return vm.likes.State(id)
}

func (vm *CollectionViewModel) CartState(id string) reconcile.RequestState {
	return vm.cart.State(id)
}

// ToggleLike flips the like on id. A tap while the previous like request for
// id is outstanding returns reconcile.ErrRequestInFlight and does nothing.
func (vm *CollectionViewModel) ToggleLike(ctx context.Context, id string) (bool, error) {
	return vm.likes.Toggle(ctx, id)
}

// ToggleCart adds id to or removes it from the order.
func (vm *CollectionViewModel) ToggleCart(ctx context.Context, id string) (bool, error) {
	return vm.cart.Toggle(ctx, id)
}

func (vm *CollectionViewModel) onChange(c reconcile.Change) {
	if vm.view == nil {
		return
	}
	cell := vm.cellByID(c.ID)
	if c.State != reconcile.Failed {
		vm.view.CellUpdated(cell)
		return
	}
	if errors.Is(c.Err, context.Canceled) {
		slog.Debug("Toggle canceled", "action", string(c.Action), "nft_id", c.ID)
	} else {
		slog.Error("Toggle failed", "action", string(c.Action), "nft_id", c.ID, "error", c.Err)
	}
	vm.view.CellFailed(cell, c.Action, networkErrorModel(c.Err, nil))
}

func (vm *CollectionViewModel) cellByID(id string) Cell {
	vm.mu.Lock()
	idx := slices.IndexFunc(vm.loaded, func(n models.Nft) bool { return n.ID == id })
	var nft models.Nft
	if idx >= 0 {
		nft = vm.loaded[idx]
	} else {
		nft = models.Nft{ID: id}
	}
	vm.mu.Unlock()
	return vm.cellFor(nft)
}

func (vm *CollectionViewModel) cellFor(n models.Nft) Cell {
	return Cell{
		ID:          n.ID,
		Name:        n.Name,
		Image:       n.FirstImage(),
		Rating:      n.Rating,
		Price:       n.Price,
		Liked:       vm.likes.Has(n.ID),
		InCart:      vm.cart.Has(n.ID),
		LikeEnabled: vm.likes.State(n.ID) != reconcile.Pending,
		CartEnabled: vm.cart.State(n.ID) != reconcile.Pending,
	}
}
