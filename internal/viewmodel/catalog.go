package viewmodel

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"nftmarket/internal/models"
)

type CollectionsLoader interface {
	LoadCollections(ctx context.Context) ([]models.NftCollection, error)
}

type CatalogSort int

const (
	CatalogSortNone CatalogSort = iota
	CatalogSortName
	CatalogSortCount
)

func ParseCatalogSort(s string) CatalogSort {
	switch s {
	case "name":
		return CatalogSortName
	case "count":
		return CatalogSortCount
	default:
		return CatalogSortNone
	}
}

// SortCollections returns a sorted copy: by name ascending, or by number of
// NFTs descending. The sort is stable.
func SortCollections(list []models.NftCollection, by CatalogSort) []models.NftCollection {
	out := slices.Clone(list)
	switch by {
	case CatalogSortName:
		slices.SortStableFunc(out, func(a, b models.NftCollection) int { return cmp.Compare(a.Name, b.Name) })
	case CatalogSortCount:
		slices.SortStableFunc(out, func(a, b models.NftCollection) int { return cmp.Compare(b.Count(), a.Count()) })
	}
	return out
}

type CatalogViewModel struct {
	loader CollectionsLoader

	mu          sync.Mutex
	collections []models.NftCollection
	sortBy      CatalogSort
}

func NewCatalogViewModel(loader CollectionsLoader) *CatalogViewModel {
	return &CatalogViewModel{loader: loader, collections: []models.NftCollection{}}
}

// Load replaces the list with the server's collections. On failure the list
// becomes empty.
func (vm *CatalogViewModel) Load(ctx context.Context) ([]models.NftCollection, error) {
	list, err := vm.loader.LoadCollections(ctx)
	if err != nil {
		slog.Error("Failed to load collections", "error", err)
		list = []models.NftCollection{}
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.collections = SortCollections(list, vm.sortBy)
	return slices.Clone(vm.collections), err
}

func (vm *CatalogViewModel) Sort(by CatalogSort) []models.NftCollection {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.sortBy = by
	vm.collections = SortCollections(vm.collections, by)
	return slices.Clone(vm.collections)
}

func (vm *CatalogViewModel) Collections() []models.NftCollection {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.collections)
}
