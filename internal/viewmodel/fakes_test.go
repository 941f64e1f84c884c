package viewmodel

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"nftmarket/internal/models"
	"nftmarket/internal/reconcile"
	"nftmarket/internal/services"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

var errNetwork = &services.TransportError{Endpoint: "test", Err: errors.New("connection refused")}

// fakeServer keeps the backend's id lists. keep, when set, filters every
// stored list the way server normalization would.
type fakeServer struct {
	mu       sync.Mutex
	likes    []string
	order    []string
	nfts     map[string]models.Nft
	failNfts map[string]bool
	keep     func(id string) bool
	failSets error
	setCalls int
	getFail  error
}

func newFakeServer(nfts ...models.Nft) *fakeServer {
	s := &fakeServer{nfts: make(map[string]models.Nft), failNfts: make(map[string]bool)}
	for _, n := range nfts {
		s.nfts[n.ID] = n
	}
	return s
}

func (s *fakeServer) store(ids []string) []string {
	out := []string{}
	for _, id := range ids {
		if s.keep == nil || s.keep(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *fakeServer) GetLikes(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getFail != nil {
		return nil, s.getFail
	}
	return slices.Clone(s.likes), nil
}

func (s *fakeServer) SetLikes(_ context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.failSets != nil {
		return nil, s.failSets
	}
	s.likes = s.store(ids)
	return slices.Clone(s.likes), nil
}

func (s *fakeServer) GetOrder(context.Context) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getFail != nil {
		return models.Order{}, s.getFail
	}
	return models.Order{ID: "1", Nfts: slices.Clone(s.order)}, nil
}

func (s *fakeServer) SetOrder(_ context.Context, ids []string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.failSets != nil {
		return models.Order{}, s.failSets
	}
	s.order = s.store(ids)
	return models.Order{ID: "1", Nfts: slices.Clone(s.order)}, nil
}

func (s *fakeServer) UpdateOrder(ctx context.Context, ids []string) (models.Order, error) {
	return s.SetOrder(ctx, ids)
}

func (s *fakeServer) LoadOrder(ctx context.Context) ([]models.CartItem, error) {
	order, err := s.GetOrder(ctx)
	if err != nil {
		return nil, err
	}
	nfts, _ := s.LoadNfts(ctx, order.Nfts)
	items := make([]models.CartItem, 0, len(nfts))
	for _, n := range nfts {
		items = append(items, models.NewCartItem(n))
	}
	return items, nil
}

// LoadNfts answers in request order, which is one valid arrival order.
func (s *fakeServer) LoadNfts(_ context.Context, ids []string) ([]models.Nft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Nft{}
	var errs []error
	for _, id := range ids {
		n, ok := s.nfts[id]
		if !ok || s.failNfts[id] {
			errs = append(errs, &services.HTTPStatusError{Endpoint: "get_nft", StatusCode: 404})
			continue
		}
		out = append(out, n)
	}
	return out, errors.Join(errs...)
}

func (s *fakeServer) ClearCache(context.Context) error { return nil }

func (s *fakeServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

type cartViewRecorder struct {
	mu      sync.Mutex
	loading int
	items   []models.CartItem
	total   models.CartTotal
	errs    []ErrorModel
}

func (v *cartViewRecorder) ShowLoading() {
	v.mu.Lock()
	v.loading++
	v.mu.Unlock()
}

func (v *cartViewRecorder) HideLoading() {
	v.mu.Lock()
	v.loading--
	v.mu.Unlock()
}

func (v *cartViewRecorder) DisplayCartItems(items []models.CartItem) {
	v.mu.Lock()
	v.items = items
	v.mu.Unlock()
}

func (v *cartViewRecorder) UpdateTotal(total models.CartTotal) {
	v.mu.Lock()
	v.total = total
	v.mu.Unlock()
}

func (v *cartViewRecorder) ShowError(em ErrorModel) {
	v.mu.Lock()
	v.errs = append(v.errs, em)
	v.mu.Unlock()
}

type collectionViewRecorder struct {
	mu      sync.Mutex
	loaded  []Cell
	updates []Cell
	failed  []Cell
	actions []reconcile.Action
}

func (v *collectionViewRecorder) CollectionLoaded(cells []Cell) {
	v.mu.Lock()
	v.loaded = cells
	v.mu.Unlock()
}

func (v *collectionViewRecorder) CellUpdated(cell Cell) {
	v.mu.Lock()
	v.updates = append(v.updates, cell)
	v.mu.Unlock()
}

func (v *collectionViewRecorder) CellFailed(cell Cell, action reconcile.Action, _ ErrorModel) {
	v.mu.Lock()
	v.failed = append(v.failed, cell)
	v.actions = append(v.actions, action)
	v.mu.Unlock()
}

func nft(id, name string, price float64, rating int) models.Nft {
	return models.Nft{ID: id, Name: name, Price: price, Rating: rating, Images: []string{"https://img/" + id + ".png"}}
}

func idsOf[T any](list []T, id func(T) string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, id(v))
	}
	return out
}

func itemID(it models.CartItem) string { return it.ID }
func nftID(n models.Nft) string       { return n.ID }
func cellID(c Cell) string            { return c.ID }

// gatedServer reports every write on arrived and holds it until the test
// sends on release.
type gatedServer struct {
	*fakeServer
	arrived chan []string
	release chan struct{}
}

func newGatedServer(srv *fakeServer) *gatedServer {
	return &gatedServer{fakeServer: srv, arrived: make(chan []string), release: make(chan struct{})}
}

func (g *gatedServer) hold(ids []string) {
	g.arrived <- slices.Clone(ids)
	<-g.release
}

func (g *gatedServer) UpdateOrder(ctx context.Context, ids []string) (models.Order, error) {
	g.hold(ids)
	return g.fakeServer.UpdateOrder(ctx, ids)
}

func (g *gatedServer) SetLikes(ctx context.Context, ids []string) ([]string, error) {
	g.hold(ids)
	return g.fakeServer.SetLikes(ctx, ids)
}
