package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/translate"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutationFixture struct {
	api    *fakeAPI
	sync   *ProductSynchronizer
	coord  *MutationCoordinator
	notify *recordingNotifier
}

func newMutationFixture(products ...models.Product) *mutationFixture {
	api := &fakeAPI{products: products}
	n := &recordingNotifier{}
	s := NewProductSynchronizer(api, n, nil)
	return &mutationFixture{
		api:    api,
		sync:   s,
		coord:  NewMutationCoordinator(api, staticCreds("tok"), s, n, nil),
		notify: n,
	}
}

func TestMutationCoordinator_SaveCreatesNew(t *testing.T) {
	f := newMutationFixture(suco)
	f.coord.StartNew()

	require.NoError(t, f.coord.Save(context.Background(), models.Product{Name: "Leite", Price: 4}))

	assert.Len(t, f.api.creates, 1)
	assert.Empty(t, f.api.updates)
	assert.Equal(t, []string{"tok"}, f.api.tokens)
	assert.Len(t, f.api.listCalls(), 1, "success triggers a fetch")
	assert.Equal(t, note{"success", MsgProductCreated}, f.notify.last())

	_, open := f.coord.Editing()
	assert.False(t, open)
}

func TestMutationCoordinator_SaveUpdatesExisting(t *testing.T) {
	f := newMutationFixture(suco)
	f.coord.StartEdit(suco)

	p, open := f.coord.Editing()
	require.True(t, open)
	require.Equal(t, suco, p)

	p.Price = 6
	require.NoError(t, f.coord.Save(context.Background(), p))

	assert.Equal(t, []int64{1}, f.api.updates)
	assert.Empty(t, f.api.creates)
	assert.Equal(t, note{"success", MsgProductUpdated}, f.notify.last())
	_, open = f.coord.Editing()
	assert.False(t, open)
}

func TestMutationCoordinator_SaveFailureKeepsEditor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"forbidden", &client.APIError{StatusCode: 403}, translate.MsgPermissionDenied},
		{
			"validation",
			&client.APIError{StatusCode: 422, Body: []byte(`{"detail":[{"loc":["body","nome"],"msg":"field required"}]}`)},
			"Nome é obrigatório",
		},
		{"duplicate", &client.APIError{StatusCode: 400, Body: []byte(`{"detail":"Produto já existe"}`)}, "Produto já existe"},
		{"generic", &client.APIError{StatusCode: 500}, translate.MsgRequestFailed},
		{"unreachable", fmt.Errorf("%w: eof", client.ErrUnavailable), translate.MsgUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMutationFixture(suco)
			f.api.writeErr = tt.err
			f.coord.StartEdit(suco)

			err := f.coord.Save(context.Background(), suco)
			require.Error(t, err)
			assert.Equal(t, note{"error", tt.want}, f.notify.last())
			assert.Empty(t, f.api.listCalls(), "no refetch on failure")

			p, open := f.coord.Editing()
			assert.True(t, open, "the editor stays open")
			assert.Equal(t, suco, p)
		})
	}
}

func TestMutationCoordinator_SaveFormBlocksInvalidInput(t *testing.T) {
	f := newMutationFixture()
	f.coord.StartNew()

	ferrs, err := f.coord.SaveForm(context.Background(), 0, models.ProductForm{Name: "", Price: "5", Stock: "1"})
	require.ErrorIs(t, err, common.ErrInvalidProduct)
	assert.Equal(t, models.MsgNameRequired, ferrs["nome"])
	assert.Equal(t, note{"error", models.MsgFixBeforeSaving}, f.notify.last())
	assert.Empty(t, f.api.tokens, "no request for an invalid form")

	ferrs, err = f.coord.SaveForm(context.Background(), 0, models.ProductForm{Name: "Leite", Price: "4,50", Tags: "a, ,b"})
	require.NoError(t, err)
	assert.Nil(t, ferrs)
	require.Len(t, f.api.creates, 1)
	assert.Equal(t, 4.5, f.api.creates[0].Price)
	assert.Equal(t, []string{"a", "b"}, f.api.creates[0].Tags)
}

func TestMutationCoordinator_Delete(t *testing.T) {
	f := newMutationFixture(suco)
	require.NoError(t, f.coord.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, f.api.deletes)
	assert.Len(t, f.api.listCalls(), 1)
	assert.Equal(t, note{"success", MsgProductDeleted}, f.notify.last())
}

func TestMutationCoordinator_DeleteFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"forbidden", &client.APIError{StatusCode: 403}, translate.MsgPermissionDenied},
		{"unauthorized", &client.APIError{StatusCode: 401}, translate.MsgPermissionDenied},
		{"not found ignores detail", &client.APIError{StatusCode: 404, Body: []byte(`{"detail":"Produto não encontrado"}`)}, MsgDeleteFailed},
		{"unreachable", fmt.Errorf("%w: eof", client.ErrUnavailable), translate.MsgUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMutationFixture(suco)
			require.NoError(t, f.sync.Start(context.Background()))
			f.api.writeErr = tt.err

			require.Error(t, f.coord.Delete(context.Background(), 1))
			assert.Equal(t, note{"error", tt.want}, f.notify.last())
			assert.Equal(t, []models.Product{suco}, f.sync.Products(), "no optimistic removal")
			assert.Len(t, f.api.listCalls(), 1)
		})
	}
}

func TestMutationCoordinator_BulkImport(t *testing.T) {
	f := newMutationFixture()
	f.api.importRes = &models.ImportResult{Message: "ok", Details: models.ImportDetails{Created: 2, Updated: 1}}
	resets := 0

	res, err := f.coord.BulkImport(context.Background(), "lote.csv", strings.NewReader(models.ImportTemplate), func() { resets++ })
	require.NoError(t, err)
	assert.Equal(t, 2, res.Details.Created)
	assert.Equal(t, 1, resets)
	assert.Equal(t, models.ImportTemplate, f.api.body, "the whole file is uploaded")
	assert.Equal(t, []string{"lote.csv"}, f.api.imports)
	assert.Equal(t, []note{
		{"loading", MsgImporting},
		{"resolved", "Importação: 2 criados, 1 atualizados!"},
	}, f.notify.all())
	assert.Len(t, f.api.listCalls(), 1)
}

func TestMutationCoordinator_BulkImportFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want string
	}{
		{"detail", models.ImportTemplate, &client.APIError{StatusCode: 400, Body: []byte(`{"detail":"Erro ao processar arquivo: x"}`)}, "Erro: Erro ao processar arquivo: x"},
		{"no detail", models.ImportTemplate, &client.APIError{StatusCode: 500, Body: []byte(`oops`)}, "Erro: " + MsgImportFailed},
		{"unreachable", models.ImportTemplate, fmt.Errorf("%w: eof", client.ErrUnavailable), "Erro: " + translate.MsgUnavailable},
		{"bad header", "nome;preco\nA;1", nil, "Erro: Arquivo inválido. Faltam as colunas: categoria, descricao, tags, estoque"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMutationFixture()
			f.api.importErr = tt.err
			resets := 0

			_, err := f.coord.BulkImport(context.Background(), "lote.csv", strings.NewReader(tt.body), func() { resets++ })
			require.Error(t, err)
			assert.Equal(t, 1, resets, "reset runs on failure too")
			assert.Equal(t, note{"rejected", tt.want}, f.notify.last())
			assert.Empty(t, f.api.listCalls())
		})
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestMutationCoordinator_BulkImportUnreadableFile(t *testing.T) {
	f := newMutationFixture()
	_, err := f.coord.BulkImport(context.Background(), "x.csv", brokenReader{}, nil)
	require.Error(t, err)
	assert.Equal(t, note{"rejected", "Erro: read failed"}, f.notify.last())
	assert.Empty(t, f.api.imports)
}
