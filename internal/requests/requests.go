package requests

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nftmarket/internal/config"
	"nftmarket/internal/models"
)

const (
	TokenHeader = "X-Practicum-Mobile-Token"
	FormContent = "application/x-www-form-urlencoded"

	apiPrefix = "/api/v1"
)

// Request describes one backend call. Name labels metrics and logs;
// Idempotent requests may be retried.
type Request struct {
	Name       string
	Method     string
	Path       string
	Form       *Form
	Idempotent bool
}

// Build turns the request into an *http.Request against baseURL.
func (r Request) Build(ctx context.Context, baseURL, token string) (*http.Request, error) {
	endpoint := strings.TrimRight(baseURL, "/") + r.Path

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.Name, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(TokenHeader, token)
	if body != nil {
		req.Header.Set("Content-Type", FormContent)
	}
	return req, nil
}

func GetCollections() Request {
	return Request{Name: "get_collections", Method: http.MethodGet, Path: apiPrefix + "/collections", Idempotent: true}
}

func GetNft(id string) Request {
	return Request{Name: "get_nft", Method: http.MethodGet, Path: apiPrefix + "/nft/" + url.PathEscape(id), Idempotent: true}
}

func GetOrder() Request {
	return Request{Name: "get_order", Method: http.MethodGet, Path: orderPath(), Idempotent: true}
}

// UpdateOrder replaces the cart with exactly nftIDs.
func UpdateOrder(nftIDs []string) Request {
	return Request{
		Name:       "update_order",
		Method:     http.MethodPut,
		Path:       orderPath(),
		Form:       NewForm().SetList("nfts", nftIDs),
		Idempotent: true,
	}
}

func GetProfile(id string) Request {
	return Request{Name: "get_profile", Method: http.MethodGet, Path: profilePath(id), Idempotent: true}
}

func UpdateProfile(id string, f models.ProfileFields) Request {
	form := NewForm().
		Set("name", f.Name).
		Set("avatar", f.Avatar).
		Set("description", f.Description).
		Set("website", f.Website)
	return Request{Name: "update_profile", Method: http.MethodPut, Path: profilePath(id), Form: form, Idempotent: true}
}

// SetLikes replaces the profile's liked NFT ids with exactly nftIDs.
func SetLikes(profileID string, nftIDs []string) Request {
	return Request{
		Name:       "set_likes",
		Method:     http.MethodPut,
		Path:       profilePath(profileID),
		Form:       NewForm().SetList("likes", nftIDs),
		Idempotent: true,
	}
}

func GetCurrencies() Request {
	return Request{Name: "get_currencies", Method: http.MethodGet, Path: apiPrefix + "/currencies", Idempotent: true}
}

// PerformPayment is a GET with side effects and is never retried.
func PerformPayment(currencyID string) Request {
	return Request{
		Name:   "perform_payment",
		Method: http.MethodGet,
		Path:   orderPath() + "/payment/" + url.PathEscape(currencyID),
	}
}

func orderPath() string {
	return apiPrefix + "/orders/" + config.OrderID
}

func profilePath(id string) string {
	return apiPrefix + "/profile/" + url.PathEscape(id)
}
