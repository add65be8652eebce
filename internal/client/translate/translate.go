// Package translate turns API and provider failures into the single
// user-facing message the console shows.
//
// Validation failures are matched against two ordered rule tables, one for
// field labels and one for message phrases. The first matching rule wins and
// unmatched input passes through unchanged. Every function returns a
// displayable string for any input.
package translate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
)

const (
	MsgPermissionDenied = "Você não tem permissão para realizar esta ação."
	MsgRequestFailed    = "Erro na requisição"
	MsgUnavailable      = "Não foi possível conectar ao servidor."
	MsgRateLimited      = "Muitas requisições. Por favor, aguarde 1 minuto para tentar novamente."

	defaultField    = "campo"
	clauseSeparator = "; "
)

type rule struct {
	match       func(string) bool
	replacement string
}

func equals(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

var fieldLabels = []rule{
	{equals("nome"), "Nome"},
	{equals("preco"), "Preço"},
	{equals("estoque"), "Estoque"},
	{equals("categoria"), "Categoria"},
	{equals("descricao"), "Descrição"},
}

// messagePhrases covers both validation dialects the backend has produced.
var messagePhrases = []rule{
	{containsAny("ensure this value is greater than", "Input should be greater than"), "deve ser maior que 0"},
	{containsAny("Input should be less than"), "deve ser menor que o permitido"},
	{containsAny("ensure this value has at least", "String should have at least"), "é muito curto"},
	{containsAny("ensure this value has at most", "String should have at most"), "é muito longo"},
	{containsAny("field required", "Field required"), "é obrigatório"},
	{containsAny("value is not a valid"), "valor inválido"},
	{containsAny("string type expected", "Input should be a valid string"), "deve ser um texto"},
}

func apply(rules []rule, s string) string {
	for _, r := range rules {
		if r.match(s) {
			return r.replacement
		}
	}
	return s
}

// FieldError is one entry of a structured validation response.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Field names the offending field: the second location element, else the
// first, else a generic placeholder. Empty strings and zero indexes are
// skipped.
func (fe FieldError) Field() string {
	for _, i := range []int{1, 0} {
		if i < len(fe.Loc) {
			if s := locString(fe.Loc[i]); s != "" {
				return s
			}
		}
	}
	return defaultField
}

func locString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Clause renders the error as "<label> <phrase>".
func (fe FieldError) Clause() string {
	return apply(fieldLabels, fe.Field()) + " " + apply(messagePhrases, fe.Msg)
}

type parsedBody struct {
	detail    string
	hasDetail bool
	fields    []FieldError
}

func parse(body []byte) parsedBody {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return parsedBody{}
	}

	var p parsedBody
	var s string
	if json.Unmarshal(envelope.Detail, &s) == nil {
		p.detail, p.hasDetail = s, s != ""
		return p
	}
	var fields []FieldError
	if json.Unmarshal(envelope.Detail, &fields) == nil {
		p.fields = fields
	}
	return p
}

// Detail returns the body's detail string, or fallback when the body has
// none.
func Detail(body []byte, fallback string) string {
	if p := parse(body); p.hasDetail {
		return p.detail
	}
	return fallback
}

// Translate maps a non-2xx response to its user-facing message.
func Translate(status int, body []byte) string {
	return TranslateWithFallback(status, body, MsgRequestFailed)
}

// TranslateWithFallback is Translate with a caller-chosen generic message.
func TranslateWithFallback(status int, body []byte, fallback string) string {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return MsgPermissionDenied
	}

	p := parse(body)
	if status == http.StatusUnprocessableEntity && len(p.fields) > 0 {
		clauses := make([]string, len(p.fields))
		for i, fe := range p.fields {
			clauses[i] = fe.Clause()
		}
		return strings.Join(clauses, clauseSeparator)
	}

	if p.hasDetail {
		return p.detail
	}
	return fallback
}

// Error maps any error returned by the client layer to a message.
func Error(err error) string {
	return ErrorWithFallback(err, MsgRequestFailed)
}

func ErrorWithFallback(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return TranslateWithFallback(apiErr.StatusCode, apiErr.Body, fallback)
	}

	var authErr *client.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}

	switch {
	case errors.Is(err, client.ErrUnavailable):
		return MsgUnavailable
	case errors.Is(err, client.ErrRateLimited):
		return MsgRateLimited
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
