package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"nftmarket/internal/auth"
	"nftmarket/internal/config"
	"nftmarket/internal/requests"
	"nftmarket/internal/telemetry"
)

type fault struct {
	status    int
	remaining int
}

// RateLimiter decides whether a client may make another request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type Handler struct {
	store   *Store
	auth    *auth.Middleware
	limiter RateLimiter

	mu     sync.Mutex
	faults map[string]*fault
}

func NewHandler(store *Store, authMiddleware *auth.Middleware) *Handler {
	return &Handler{
		store:  store,
		auth:   authMiddleware,
		faults: make(map[string]*fault),
	}
}

// SetRateLimiter limits requests per client address. A nil limiter turns
// limiting off.
func (h *Handler) SetRateLimiter(l RateLimiter) {
	h.limiter = l
}

// InjectFault makes the next n requests matching pattern answer with status.
// n < 0 fails until cleared with n == 0.
func (h *Handler) InjectFault(pattern string, status, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n == 0 {
		delete(h.faults, pattern)
		return
	}
	h.faults[pattern] = &fault{status: status, remaining: n}
}

func (h *Handler) takeFault(pattern string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.faults[pattern]
	if !ok {
		return 0, false
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(h.faults, pattern)
		}
	}
	return f.status, true
}

// Routes returns the API mux behind auth and, when set, the rate limiter.
// Metrics are recorded per route, so rejected requests are not counted.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "GET /api/v1/collections", h.GetCollections)
	h.handle(mux, "GET /api/v1/nft/{id}", h.GetNft)
	h.handle(mux, "GET /api/v1/orders/{id}", h.GetOrder)
	h.handle(mux, "PUT /api/v1/orders/{id}", h.PutOrder)
	h.handle(mux, "GET /api/v1/profile/{id}", h.GetProfile)
	h.handle(mux, "PUT /api/v1/profile/{id}", h.PutProfile)
	h.handle(mux, "GET /api/v1/currencies", h.GetCurrencies)
	h.handle(mux, "GET /api/v1/orders/{id}/payment/{currencyId}", h.Pay)

	var root http.Handler = mux
	if h.auth != nil {
		root = h.auth.ValidateToken(root)
	}
	if h.limiter != nil {
		root = h.rateLimit(root)
	}
	return root
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}
		if !h.limiter.Allow(r.Context(), clientIP) {
			slog.Warn("Rate limit exceeded", "ip", clientIP)
			http.Error(w, `{"error": "Too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, telemetry.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, ok := h.takeFault(pattern); ok {
			slog.Info("Injected fault", "pattern", pattern, "status", status)
			http.Error(w, http.StatusText(status), status)
			return
		}
		fn(w, r)
	})))
}

func (h *Handler) GetCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Collections())
}

func (h *Handler) GetNft(w http.ResponseWriter, r *http.Request) {
	nft, ok := h.store.Nft(r.PathValue("id"))
	if !ok {
		http.Error(w, "NFT not found", http.StatusNotFound)
		return
	}
	writeJSON(w, nft)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != config.OrderID {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.store.Order())
}

// PutOrder replaces the order. A missing nfts field empties it.
func (h *Handler) PutOrder(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != config.OrderID {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form body", http.StatusBadRequest)
		return
	}

	order := h.store.SetOrder(requests.SplitList(r.PostForm.Get("nfts")))
	slog.Info("Order replaced", "nfts", order.Nfts)
	writeJSON(w, order)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != config.ProfileID {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.store.Profile())
}

// PutProfile updates only the fields present in the body.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != config.ProfileID {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form body", http.StatusBadRequest)
		return
	}

	var patch ProfilePatch
	field := func(key string) *string {
		if vals, ok := r.PostForm[key]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}
	patch.Name = field("name")
	patch.Avatar = field("avatar")
	patch.Description = field("description")
	patch.Website = field("website")
	if likes := field("likes"); likes != nil {
		patch.Likes = requests.SplitList(*likes)
		patch.SetLikes = true
	}

	writeJSON(w, h.store.UpdateProfile(patch))
}

func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Currencies())
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != config.OrderID {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	res := h.store.Pay(r.PathValue("currencyId"))
	slog.Info("Payment processed", "currency_id", r.PathValue("currencyId"), "success", res.Success)
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		slog.Error("JSON marshal error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseBytes)
}
