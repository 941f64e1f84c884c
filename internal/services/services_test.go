package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nftmarket/internal/auth"
	"nftmarket/internal/backend"
	"nftmarket/internal/cache"
	"nftmarket/internal/config"
	"nftmarket/internal/models"
	"nftmarket/internal/requests"
	"nftmarket/internal/resilience"
)

const testToken = "test-token"

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (c *hitCounter) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		key := r.Method + " " + r.URL.Path
		if strings.HasPrefix(r.URL.Path, "/api/v1/nft/") {
			key = r.Method + " /api/v1/nft/*"
		}
		c.hits[key]++
		c.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (c *hitCounter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[key]
}

type fixture struct {
	svc     *Assembly
	backend *backend.Handler
	store   *backend.Store
	hits    *hitCounter
	cfg     *config.Config
}

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.Token = testToken
	cfg.RetryDelay = time.Millisecond
	cfg.RequestsPerSecond = 10000
	cfg.Burst = 1000
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seed, err := backend.LoadSeed("")
	require.NoError(t, err)
	store := backend.NewStore(seed)
	h := backend.NewHandler(store, auth.NewMiddleware(testToken, ""))
	hits := &hitCounter{hits: make(map[string]int)}

	srv := httptest.NewServer(hits.wrap(h.Routes()))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	return &fixture{
		svc:     NewAssembly(cfg, cache.NewMemory()),
		backend: h,
		store:   store,
		hits:    hits,
		cfg:     cfg,
	}
}

func TestSendDecodes(t *testing.T) {
	f := newFixture(t)

	cols, err := f.svc.Catalog.LoadCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "Peach", cols[0].Name)
	assert.Equal(t, 3, cols[0].Count())
}

func TestSendRetriesServerErrors(t *testing.T) {
	f := newFixture(t)
	f.backend.InjectFault("GET /api/v1/currencies", http.StatusServiceUnavailable, 2)

	methods, err := f.svc.Payment.LoadPaymentMethods(context.Background())
	require.NoError(t, err)
	assert.Len(t, methods, 3)
	assert.Equal(t, 3, f.hits.get("GET /api/v1/currencies"))
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Nfts.LoadNft(context.Background(), "missing")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, 1, f.hits.get("GET /api/v1/nft/*"))
}

func TestPaymentIsNotRetried(t *testing.T) {
	f := newFixture(t)
	f.backend.InjectFault("GET /api/v1/orders/{id}/payment/{currencyId}", http.StatusBadGateway, 1)

	_, err := f.svc.Payment.PerformPayment(context.Background(), "1")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, 1, f.hits.get("GET /api/v1/orders/1/payment/1"))
}

func TestPaymentResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Payment.PerformPayment(ctx, "1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = f.svc.Payment.PerformPayment(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	client := NewServiceClient(testConfig(srv.URL))
	var out models.Order
	err := client.Send(context.Background(), requests.GetOrder(), &out)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.True(t, IsNetworkError(err))
}

func TestTransportErrorAndBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig(url)
	cfg.RetryAttempts = 1
	cfg.BreakerThreshold = 2
	cfg.BreakerTimeout = time.Hour
	client := NewServiceClient(cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := client.Send(ctx, requests.GetOrder(), nil)
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.NotErrorIs(t, err, resilience.ErrCircuitOpen)
	}

	err := client.Send(ctx, requests.GetOrder(), nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.True(t, IsNetworkError(err))
}

func TestSendHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewServiceClient(testConfig(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.Send(ctx, requests.GetOrder(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoadOrderEmptySkipsDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Cart.UpdateOrder(ctx, nil)
	require.NoError(t, err)

	items, err := f.svc.Cart.LoadOrder(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, f.hits.get("GET /api/v1/nft/*"))
}

func TestLoadOrderJoinsDetails(t *testing.T) {
	f := newFixture(t)

	items, err := f.svc.Cart.LoadOrder(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Archie", "Zeus"}, names)
}

func TestLoadOrderOmitsFailedItems(t *testing.T) {
	f := newFixture(t)
	f.backend.InjectFault("GET /api/v1/nft/{id}", http.StatusNotFound, 1)

	items, err := f.svc.Cart.LoadOrder(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLoadNftsUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	nfts, err := f.svc.Nfts.LoadNfts(ctx, []string{"n1", "n2", "n3"})
	require.NoError(t, err)
	assert.Len(t, nfts, 3)
	assert.Equal(t, 3, f.hits.get("GET /api/v1/nft/*"))

	_, err = f.svc.Nfts.LoadNfts(ctx, []string{"n1", "n2"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.hits.get("GET /api/v1/nft/*"))

	require.NoError(t, f.svc.Nfts.ClearCache(ctx))
	_, err = f.svc.Nfts.LoadNft(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 4, f.hits.get("GET /api/v1/nft/*"))
}

func TestLoadNftsPartial(t *testing.T) {
	f := newFixture(t)

	nfts, err := f.svc.Nfts.LoadNfts(context.Background(), []string{"n1", "ghost", "n2"})
	assert.Error(t, err)
	assert.Len(t, nfts, 2)
}

func TestLoadNftsOrderedKeepsRequestOrder(t *testing.T) {
	f := newFixture(t)

	nfts, err := f.svc.Profile.LoadNfts(context.Background(), []string{"n6", "ghost", "n1", "n4"})
	assert.Error(t, err)

	ids := make([]string, 0, len(nfts))
	for _, n := range nfts {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"n6", "n1", "n4"}, ids)
}

func TestSetOrderReturnsServerState(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Orders.SetOrder(context.Background(), []string{"n2", "ghost", "n2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, order.Nfts)
	assert.Equal(t, []string{"n2"}, f.store.Order().Nfts)
}

func TestLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	likes, err := f.svc.Likes.GetLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, likes)

	likes, err = f.svc.Likes.SetLikes(ctx, []string{"n2", "n5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n5"}, likes)

	likes, err = f.svc.Likes.SetLikes(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Profile.UpdateProfile(ctx, config.ProfileID, models.ProfileFields{
		Name:        "Neo",
		Avatar:      "https://img/neo.png",
		Description: "The One",
		Website:     "https://neo.dev",
	})
	require.NoError(t, err)
	assert.Equal(t, "Neo", p.Name)
	assert.Equal(t, []string{"n2"}, p.Likes, "likes untouched by profile edit")

	loaded, err := f.svc.Profile.LoadProfile(ctx, config.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}
