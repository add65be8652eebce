package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Local validation messages shown next to form fields.
const (
	MsgNameRequired    = "Nome é obrigatório."
	MsgPriceRequired   = "Preço é obrigatório."
	MsgPriceNegative   = "O preço não pode ser negativo."
	MsgStockNegative   = "O estoque não pode ser negativo."
	MsgPriceInvalid    = "Preço inválido."
	MsgStockInvalid    = "Estoque inválido."
	MsgFixBeforeSaving = "Corrija os erros antes de salvar."
)

// ProductForm holds the raw text of the product editor fields.
type ProductForm struct {
	Name        string
	Description string
	Price       string
	Category    string
	Stock       string
	Tags        string
}

// FormErrors maps a field name (API naming) to its validation message.
type FormErrors map[string]string

// Messages returns the messages ordered by field name.
func (e FormErrors) Messages() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, e[k])
	}
	return out
}

// FormFromProduct pre-fills a form with an existing product.
func FormFromProduct(p Product) ProductForm {
	return ProductForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:    p.Category,
		Stock:       strconv.FormatInt(p.Stock, 10),
		Tags:        strings.Join(p.Tags, ", "),
	}
}

// ParseProductForm validates f and converts it into a Product carrying id.
// A blank stock is treated as zero. Decimal commas are accepted in the price.
// When the returned FormErrors is non-empty no request must be issued.
func ParseProductForm(id int64, f ProductForm) (Product, FormErrors) {
	errs := FormErrors{}

	if strings.TrimSpace(f.Name) == "" {
		errs["nome"] = MsgNameRequired
	}

	var price float64
	priceText := strings.ReplaceAll(strings.TrimSpace(f.Price), ",", ".")
	if priceText == "" {
		errs["preco"] = MsgPriceRequired
	} else if v, err := strconv.ParseFloat(priceText, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs["preco"] = MsgPriceInvalid
	} else if v < 0 {
		errs["preco"] = MsgPriceNegative
	} else {
		price = v
	}

	var stock int64
	if stockText := strings.TrimSpace(f.Stock); stockText != "" {
		if v, err := strconv.ParseInt(stockText, 10, 64); err != nil {
			errs["estoque"] = MsgStockInvalid
		} else if v < 0 {
			errs["estoque"] = MsgStockNegative
		} else {
			stock = v
		}
	}

	p := Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Category:    f.Category,
		Stock:       stock,
		Tags:        ParseTags(f.Tags),
	}
	return p, errs
}
