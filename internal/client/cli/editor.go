package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/filex"
)

// New opens the editor for a new product.
func (a *App) New(ctx context.Context) error {
	a.mutations.StartNew()
	return a.edit(ctx, 0, models.ProductForm{})
}

// Edit opens the editor for a loaded product.
func (a *App) Edit(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		printlnFn("Uso: edit <id>")
		return err
	}

	p, ok := a.findProduct(id)
	if !ok {
		printlnFn(fmt.Sprintf("Produto #%d não encontrado.", id))
		return fmt.Errorf("product %d not loaded", id)
	}

	a.mutations.StartEdit(p)
	return a.edit(ctx, p.ID, models.FormFromProduct(p))
}

// edit prompts for the fields and saves until the save succeeds or the user
// gives up. The editor keeps the typed values between attempts.
func (a *App) edit(ctx context.Context, id int64, form models.ProductForm) error {
	for {
		var err error
		if form, err = a.promptForm(form); err != nil {
			a.mutations.CancelEdit()
			return err
		}

		ferrs, err := a.mutations.SaveForm(ctx, id, form)
		if err == nil {
			return nil
		}
		for _, msg := range ferrs.Messages() {
			printlnFn(" -", msg)
		}

		again, cerr := Confirm(a.reader, "Editar novamente?", a.out)
		if cerr != nil || !again {
			a.mutations.CancelEdit()
			return err
		}
	}
}

func (a *App) promptForm(f models.ProductForm) (models.ProductForm, error) {
	fields := []struct {
		prompt string
		value  *string
	}{
		{"Nome", &f.Name},
		{"Descrição", &f.Description},
		{"Preço", &f.Price},
		{"Categoria", &f.Category},
		{"Estoque", &f.Stock},
		{"Tags (separadas por vírgula)", &f.Tags},
	}
	for _, fld := range fields {
		v, err := GetWithDefault(a.reader, fld.prompt, *fld.value, a.out)
		if err != nil {
			return f, err
		}
		*fld.value = v
	}
	return f, nil
}

// Delete removes a product after confirmation.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		printlnFn("Uso: delete <id>")
		return err
	}

	prompt := fmt.Sprintf("Excluir o produto #%d?", id)
	if p, ok := a.findProduct(id); ok {
		prompt = fmt.Sprintf("Excluir o produto #%d (%s)?", id, p.Name)
	}
	ok, err := Confirm(a.reader, prompt, a.out)
	if err != nil || !ok {
		return err
	}

	return a.mutations.Delete(ctx, id)
}

// Import uploads a CSV (.csv) file. The file is closed once the
// import has finished, whatever the outcome.
func (a *App) Import(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		printlnFn("Uso: import <arquivo>")
		return errors.New("import: missing file")
	}

	f, err := os.Open(path)
	if err != nil {
		printlnFn("Não foi possível abrir o arquivo:", err)
		return err
	}

	_, err = a.mutations.BulkImport(ctx, filepath.Base(path), f, func() { _ = f.Close() })
	return err
}

// Template writes the import template to path, a directory, or the data
// directory when path is empty.
func (a *App) Template(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = a.config.DataDir
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, models.ImportTemplateName)
	}

	if err := filex.WriteFileAtomic(path, []byte(models.ImportTemplate), 0o644); err != nil {
		a.log.Warn(ctx, "write import template", "path", path, "error", err)
		printlnFn("Não foi possível salvar o modelo:", err)
		return err
	}
	printlnFn("Modelo salvo em", path)
	return nil
}

func (a *App) findProduct(id int64) (models.Product, bool) {
	for _, p := range a.products.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %d", id)
	}
	return id, nil
}
