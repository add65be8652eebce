package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/common"
)

// List prints the filtered products, or the loading / error state.
func (a *App) List(ctx context.Context) error {
	if a.products.Loading() {
		printlnFn("Carregando produtos...")
		return nil
	}
	if text := a.products.ErrorText(); text != "" {
		printlnFn(text)
		printlnFn("Digite 'retry' para tentar novamente.")
		return nil
	}

	f := a.products.Filter()
	items := a.products.Filtered()

	header := fmt.Sprintf("Produtos: %d (ordem: %s, categoria: %s", len(items), sortLabel(a.products.Sort()), f.Category)
	if f.Search != "" {
		header += fmt.Sprintf(", busca: %q", f.Search)
	}
	printlnFn(header + ")")

	if len(items) == 0 {
		printlnFn("Nenhum produto encontrado.")
		return nil
	}
	for _, p := range items {
		printlnFn(" ", p.String())
	}
	return nil
}

// Sort changes the server-side ordering, e.g. "price-desc". Without a token
// it shows the available orderings.
func (a *App) Sort(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return a.Sorts(ctx)
	}

	spec, err := models.ParseSortSpec(token)
	if err != nil {
		printlnFn("Ordenação inválida:", token)
		return err
	}
	if err := a.products.SetSort(ctx, spec); err != nil {
		return err
	}
	return a.List(ctx)
}

func (a *App) Sorts(ctx context.Context) error {
	current := a.products.Sort()
	for _, o := range models.SortOptions {
		mark := " "
		if o.Spec == current {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %-10s %s", mark, o.Spec.String(), o.Label))
	}
	return nil
}

// Category selects a category; without a name every category is shown
// again.
func (a *App) Category(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = common.AllCategories
	}

	if err := a.products.SetCategory(name); err != nil {
		if errors.Is(err, common.ErrUnknownCategory) {
			printlnFn("Categoria desconhecida:", name)
		}
		return err
	}
	return a.List(ctx)
}

func (a *App) Categories(ctx context.Context) error {
	current := a.products.Filter().Category
	for _, c := range a.products.Categories() {
		mark := " "
		if c == current {
			mark = "*"
		}
		printlnFn(mark, c)
	}
	return nil
}

// Search filters by product name; an empty term clears the search.
func (a *App) Search(ctx context.Context, term string) error {
	a.products.SetSearch(strings.TrimSpace(term))
	return a.List(ctx)
}

func (a *App) Retry(ctx context.Context) error {
	if err := a.products.Retry(ctx); err != nil {
		return err
	}
	return a.List(ctx)
}

// Status prints the session and catalog state.
func (a *App) Status(ctx context.Context) error {
	m := a.sessionManager()
	printlnFn("Sessão:", m.State().String())
	if s := m.Session(); s != nil {
		if s.User.Email != "" {
			printlnFn("Usuário:", s.User.Email)
		}
		if exp := s.Expiry(); !exp.IsZero() {
			printlnFn("Expira em:", exp.Local().Format("02/01/2006 15:04:05"))
		}
	}

	f := a.products.Filter()
	printlnFn("Ordenação:", sortLabel(a.products.Sort()))
	printlnFn("Categoria:", f.Category)
	if f.Search != "" {
		printlnFn("Busca:", f.Search)
	}
	printlnFn("Produtos carregados:", len(a.products.Products()))
	if text := a.products.ErrorText(); text != "" {
		printlnFn("Erro:", text)
	}
	return nil
}

func sortLabel(spec models.SortSpec) string {
	for _, o := range models.SortOptions {
		if o.Spec == spec {
			return o.Label
		}
	}
	return spec.String()
}
