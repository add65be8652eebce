package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/translate"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
)

const (
	MsgProductUpdated = "Produto atualizado!"
	MsgProductCreated = "Produto criado!"
	MsgProductDeleted = "Produto excluído!"
	MsgDeleteFailed   = "Erro ao deletar"
	MsgImporting      = "Importando produtos..."
	MsgImportFailed   = "Erro na importação"
	importErrorPrefix = "Erro: "
)

// ProductWriter performs authenticated writes against the product API.
type ProductWriter interface {
	Create(ctx context.Context, token string, p models.Product) error
	Update(ctx context.Context, token string, id int64, p models.Product) error
	Delete(ctx context.Context, token string, id int64) error
	Import(ctx context.Context, token, filename string, r io.Reader) (*models.ImportResult, error)
}

// CredentialSource yields the bearer credential for writes.
type CredentialSource interface {
	AccessToken(ctx context.Context) string
}

// Refresher reloads the product collection.
type Refresher interface {
	Fetch(ctx context.Context) error
}

// MutationCoordinator runs writes with the current credential and refreshes
// the collection after each success. Writes are not serialized against each
// other; the API decides the outcome of concurrent writes to one product.
type MutationCoordinator struct {
	api     ProductWriter
	creds   CredentialSource
	refresh Refresher
	notify  Notifier
	log     logging.Logger

	mu       sync.Mutex
	formOpen bool
	current  models.Product
}

func NewMutationCoordinator(api ProductWriter, creds CredentialSource, refresh Refresher, notify Notifier, log logging.Logger) *MutationCoordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &MutationCoordinator{api: api, creds: creds, refresh: refresh, notify: notify, log: log}
}

// StartNew opens the editor for a product that does not exist yet.
func (c *MutationCoordinator) StartNew() {
	c.mu.Lock()
	c.formOpen, c.current = true, models.Product{}
	c.mu.Unlock()
}

func (c *MutationCoordinator) StartEdit(p models.Product) {
	c.mu.Lock()
	c.formOpen, c.current = true, p
	c.mu.Unlock()
}

func (c *MutationCoordinator) CancelEdit() {
	c.mu.Lock()
	c.formOpen, c.current = false, models.Product{}
	c.mu.Unlock()
}

// Editing returns the product in the editor and whether the editor is open.
func (c *MutationCoordinator) Editing() (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.formOpen
}

// Save creates p when it is new and updates it otherwise. The editor stays
// open when the write fails.
func (c *MutationCoordinator) Save(ctx context.Context, p models.Product) error {
	token := c.creds.AccessToken(ctx)

	var err error
	if p.IsNew() {
		err = c.api.Create(ctx, token, p)
	} else {
		err = c.api.Update(ctx, token, p.ID, p)
	}
	if err != nil {
		c.log.Warn(ctx, "save product failed", "id", p.ID, "error", err)
		c.notify.Error(translate.Error(err))
		return err
	}

	c.CancelEdit()
	_ = c.refresh.Fetch(ctx)
	if p.IsNew() {
		c.notify.Success(MsgProductCreated)
	} else {
		c.notify.Success(MsgProductUpdated)
	}
	return nil
}

// SaveForm validates the editor fields locally and saves the result. No
// request is issued while the form has errors.
func (c *MutationCoordinator) SaveForm(ctx context.Context, id int64, f models.ProductForm) (models.FormErrors, error) {
	p, ferrs := models.ParseProductForm(id, f)
	if len(ferrs) > 0 {
		c.notify.Error(models.MsgFixBeforeSaving)
		return ferrs, fmt.Errorf("%w: %s", common.ErrInvalidProduct, strings.Join(ferrs.Messages(), " "))
	}
	return nil, c.Save(ctx, p)
}

// Delete removes a product. The held collection is only changed by the
// refetch that follows a success.
func (c *MutationCoordinator) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, c.creds.AccessToken(ctx), id); err != nil {
		c.log.Warn(ctx, "delete product failed", "id", id, "error", err)
		c.notify.Error(deleteMessage(err))
		return err
	}

	_ = c.refresh.Fetch(ctx)
	c.notify.Success(MsgProductDeleted)
	return nil
}

func deleteMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && !errors.Is(err, client.ErrUnauthorized) {
		return MsgDeleteFailed
	}
	return translate.ErrorWithFallback(err, MsgDeleteFailed)
}

// BulkImport uploads a spreadsheet. The loading indicator is replaced by the
// outcome, and reset always runs so the same file can be picked again.
func (c *MutationCoordinator) BulkImport(ctx context.Context, filename string, r io.Reader, reset func()) (*models.ImportResult, error) {
	if reset != nil {
		defer reset()
	}

	pending := c.notify.Loading(MsgImporting)

	body, err := checkedImport(r)
	if err != nil {
		pending.Error(importErrorPrefix + translate.ErrorWithFallback(err, MsgImportFailed))
		return nil, err
	}

	res, err := c.api.Import(ctx, c.creds.AccessToken(ctx), filename, body)
	if err != nil {
		c.log.Warn(ctx, "import failed", "file", filename, "error", err)
		pending.Error(importErrorPrefix + importMessage(err))
		return nil, err
	}

	c.log.Info(ctx, "import done", "file", filename,
		"created", res.Details.Created, "updated", res.Details.Updated, "errors", res.Details.Errors)
	pending.Success(res.Summary())
	_ = c.refresh.Fetch(ctx)
	return res, nil
}

// checkedImport verifies the header line and returns a reader that still
// yields the whole file.
func checkedImport(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := models.CheckImportHeader(header); err != nil {
		return nil, err
	}
	return io.MultiReader(strings.NewReader(header), br), nil
}

func importMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return translate.Detail(apiErr.Body, MsgImportFailed)
	}
	return translate.ErrorWithFallback(err, MsgImportFailed)
}
