package viewmodel

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"nftmarket/internal/models"
	"nftmarket/internal/reconcile"
)

// CartService is the part of the services layer the cart screen needs.
type CartService interface {
	LoadOrder(ctx context.Context) ([]models.CartItem, error)
	UpdateOrder(ctx context.Context, nftIDs []string) (models.Order, error)
}

type CartView interface {
	ShowLoading()
	HideLoading()
	DisplayCartItems(items []models.CartItem)
	UpdateTotal(total models.CartTotal)
	ShowError(em ErrorModel)
}

type CartPhase int

const (
	CartInitial CartPhase = iota
	CartLoading
	CartData
	CartFailed
)

func (p CartPhase) String() string {
	switch p {
	case CartInitial:
		return "initial"
	case CartLoading:
		return "loading"
	case CartData:
		return "data"
	case CartFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type CartSort int

const (
	CartSortNone CartSort = iota
	CartSortPrice
	CartSortName
	CartSortRating
)

// ParseCartSort maps a CLI flag value to a sort option. Unknown values mean
// no sorting.
func ParseCartSort(s string) CartSort {
	switch s {
	case "price":
		return CartSortPrice
	case "name":
		return CartSortName
	case "rating":
		return CartSortRating
	default:
		return CartSortNone
	}
}

// SortCartItems returns a sorted copy. Price and rating are descending,
// name lexicographic. Ties keep their input order.
func SortCartItems(items []models.CartItem, by CartSort) []models.CartItem {
	out := slices.Clone(items)
	switch by {
	case CartSortPrice:
		slices.SortStableFunc(out, func(a, b models.CartItem) int { return cmp.Compare(b.Price, a.Price) })
	case CartSortName:
		slices.SortStableFunc(out, func(a, b models.CartItem) int { return cmp.Compare(a.Name, b.Name) })
	case CartSortRating:
		slices.SortStableFunc(out, func(a, b models.CartItem) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}

type CartViewModel struct {
	service CartService
	view    CartView

	// writeMu serializes order updates so each one is built from the
	// list the previous one left behind.
	writeMu sync.Mutex

	mu      sync.Mutex
	phase   CartPhase
	lastErr error
	items   []models.CartItem
	sortBy  CartSort
	gen     uint64
	loadSeq uint64
}

func NewCartViewModel(service CartService, view CartView) *CartViewModel {
	return &CartViewModel{service: service, view: view, items: []models.CartItem{}}
}

// Load fetches the order and its NFTs. Overlapping loads are allowed; only
// the most recently started one is applied.
func (vm *CartViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	vm.loadSeq++
	seq := vm.loadSeq
	vm.phase = CartLoading
	vm.mu.Unlock()

	vm.view.ShowLoading()
	items, err := vm.service.LoadOrder(ctx)

	vm.mu.Lock()
	if seq != vm.loadSeq {
		vm.mu.Unlock()
		return err
	}
	if err != nil {
		vm.phase = CartFailed
		vm.lastErr = err
		vm.mu.Unlock()

		slog.Error("Failed to load cart", "error", err)
		vm.view.HideLoading()
		vm.view.ShowError(networkErrorModel(err, vm.Load))
		return err
	}
	vm.items = SortCartItems(items, vm.sortBy)
	vm.gen++
	vm.phase = CartData
	vm.lastErr = nil
	snapshot := slices.Clone(vm.items)
	vm.mu.Unlock()

	vm.view.HideLoading()
	vm.publish(snapshot)
	return nil
}

func (vm *CartViewModel) Retry(ctx context.Context) error {
	return vm.Load(ctx)
}

// SetSort re-sorts the current rows off the caller's goroutine. If the rows
// change while sorting, the newer rows are sorted instead.
func (vm *CartViewModel) SetSort(ctx context.Context, by CartSort) error {
	vm.mu.Lock()
	vm.sortBy = by
	snapshot := slices.Clone(vm.items)
	gen := vm.gen
	vm.mu.Unlock()

	done := make(chan []models.CartItem, 1)
	go func() { done <- SortCartItems(snapshot, by) }()

	var sorted []models.CartItem
	select {
	case sorted = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	vm.mu.Lock()
	if vm.gen != gen {
		sorted = SortCartItems(vm.items, vm.sortBy)
	}
	vm.items = sorted
	vm.gen++
	snapshot = slices.Clone(sorted)
	vm.mu.Unlock()

	vm.publish(snapshot)
	return nil
}

// Delete removes id from the order. On success the rows become the existing
// rows whose ids the server kept. On failure the rows are left as they were.
// Concurrent deletes are sent one at a time.
func (vm *CartViewModel) Delete(ctx context.Context, id string) error {
	vm.writeMu.Lock()
	defer vm.writeMu.Unlock()

	vm.mu.Lock()
	idx := slices.IndexFunc(vm.items, func(it models.CartItem) bool { return it.ID == id })
	if idx < 0 {
		vm.mu.Unlock()
		return ErrItemNotFound
	}
	desired := make([]string, 0, len(vm.items)-1)
	for _, it := range vm.items {
		if it.ID != id {
			desired = append(desired, it.ID)
		}
	}
	vm.mu.Unlock()

	order, err := vm.service.UpdateOrder(ctx, desired)
	if err != nil {
		slog.Error("Failed to remove NFT from cart", "nft_id", id, "error", err)
		vm.view.ShowError(networkErrorModel(err, vm.Load))
		return err
	}

	kept := reconcile.NewIDSet(order.Nfts...)
	vm.mu.Lock()
	vm.items = slices.DeleteFunc(slices.Clone(vm.items), func(it models.CartItem) bool { return !kept.Has(it.ID) })
	vm.gen++
	snapshot := slices.Clone(vm.items)
	vm.mu.Unlock()

	vm.publish(snapshot)
	return nil
}

func (vm *CartViewModel) publish(items []models.CartItem) {
	vm.view.DisplayCartItems(items)
	vm.view.UpdateTotal(models.NewCartTotal(items))
}

func (vm *CartViewModel) Items() []models.CartItem {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.items)
}

func (vm *CartViewModel) Total() models.CartTotal {
	return models.NewCartTotal(vm.Items())
}

// State reports the screen phase and, when failed, the error behind it.
func (vm *CartViewModel) State() (CartPhase, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.phase, vm.lastErr
}

func (vm *CartViewModel) Sort() CartSort {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sortBy
}
