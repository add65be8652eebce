package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/translate"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
)

const (
	MsgRateLimited     = translate.MsgRateLimited
	MsgBackendDown     = "Não foi possível conectar ao servidor. Verifique se o backend está rodando."
	MsgConnectionError = "Erro de conexão."
)

// ProductLister reads the product collection.
type ProductLister interface {
	List(ctx context.Context, spec models.SortSpec) ([]models.Product, error)
}

// ProductSynchronizer holds the fetched collection with its loading and
// error state and derives the filtered views from it. Only a sort change
// (or an explicit Fetch) talks to the API; category and search changes
// work on the held collection.
type ProductSynchronizer struct {
	api    ProductLister
	notify Notifier
	log    logging.Logger

	mu       sync.RWMutex
	products []models.Product
	sort     models.SortSpec
	filter   models.FilterState
	inFlight int
	errText  string
}

func NewProductSynchronizer(api ProductLister, notify Notifier, log logging.Logger) *ProductSynchronizer {
	if log == nil {
		log = logging.Nop()
	}
	return &ProductSynchronizer{
		api:      api,
		notify:   notify,
		log:      log,
		products: []models.Product{},
		sort:     models.DefaultSort(),
		filter:   models.DefaultFilter(),
	}
}

// Start performs the initial fetch with the current sort.
func (s *ProductSynchronizer) Start(ctx context.Context) error {
	return s.Fetch(ctx)
}

// SetSort changes the ordering and refetches when it differs from the
// current one.
func (s *ProductSynchronizer) SetSort(ctx context.Context, spec models.SortSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.sort == spec {
		s.mu.Unlock()
		return nil
	}
	s.sort = spec
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// Fetch reads the collection with the sort current at call time. A
// successful response replaces the held collection whole; overlapping
// fetches are not cancelled and the last one to finish wins.
func (s *ProductSynchronizer) Fetch(ctx context.Context) error {
	s.mu.Lock()
	spec := s.sort
	s.inFlight++
	s.errText = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	products, err := s.api.List(ctx, spec)
	if err != nil {
		text := MsgBackendDown
		if errors.Is(err, client.ErrRateLimited) {
			text = MsgRateLimited
		}
		s.log.Error(ctx, "fetch products failed", "sort", spec.String(), "error", err)

		s.mu.Lock()
		s.errText = text
		s.mu.Unlock()
		s.notify.Error(MsgConnectionError)
		return err
	}

	s.mu.Lock()
	s.products = products
	s.errText = ""
	if !slices.Contains(DeriveCategories(products), s.filter.Category) {
		s.filter.Category = common.AllCategories
	}
	s.mu.Unlock()

	s.log.Debug(ctx, "products fetched", "count", len(products), "sort", spec.String())
	return nil
}

// Retry is the manual retry of the error state.
func (s *ProductSynchronizer) Retry(ctx context.Context) error {
	return s.Fetch(ctx)
}

func (s *ProductSynchronizer) Sort() models.SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Loading reports whether any fetch is still in flight.
func (s *ProductSynchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// ErrorText is the full-page error message; empty when the last fetch
// succeeded.
func (s *ProductSynchronizer) ErrorText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errText
}

func (s *ProductSynchronizer) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

func (s *ProductSynchronizer) Filter() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *ProductSynchronizer) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DeriveCategories(s.products)
}

// SetCategory selects a category from the derived set.
func (s *ProductSynchronizer) SetCategory(category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(DeriveCategories(s.products), category) {
		return fmt.Errorf("%w: %q", common.ErrUnknownCategory, category)
	}
	s.filter.Category = category
	return nil
}

func (s *ProductSynchronizer) SetSearch(term string) {
	s.mu.Lock()
	s.filter.Search = term
	s.mu.Unlock()
}

func (s *ProductSynchronizer) Filtered() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterProducts(s.products, s.filter)
}

// DeriveCategories returns the all-categories sentinel followed by each
// non-empty category in order of first appearance.
func DeriveCategories(products []models.Product) []string {
	out := []string{common.AllCategories}
	seen := map[string]bool{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// FilterProducts applies the category and then the name search. The input
// slice is never modified.
func FilterProducts(products []models.Product, f models.FilterState) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Category != common.AllCategories && f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !common.ContainsFold(p.Name, f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
