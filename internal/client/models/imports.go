package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/catalogctl/internal/common"
)

// ImportResult is the bulk import response body.
type ImportResult struct {
	Message string        `json:"message"`
	Details ImportDetails `json:"details"`
}

// ImportDetails holds the per-outcome record counts.
type ImportDetails struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// Summary is the user-facing report of the import.
func (r ImportResult) Summary() string {
	return fmt.Sprintf("Importação: %d criados, %d atualizados!", r.Details.Created, r.Details.Updated)
}

// ImportTemplateName is the file name offered for the CSV template.
const ImportTemplateName = "modelo_importacao.csv"

// ImportTemplate is the semicolon separated header plus one example row.
const ImportTemplate = "nome;categoria;descricao;tags;preco;estoque\n" +
	"Exemplo Produto;Bebidas;Descrição do produto;tag1,tag2;10.50;100"

// ImportColumns are the header names every import file must carry.
var ImportColumns = []string{"nome", "categoria", "descricao", "tags", "preco", "estoque"}

// ImportHeaderError lists the required columns an import file lacks.
type ImportHeaderError struct {
	Missing []string
}

func (e *ImportHeaderError) Error() string {
	return "Arquivo inválido. Faltam as colunas: " + strings.Join(e.Missing, ", ")
}

func (e *ImportHeaderError) Is(target error) bool {
	return target == common.ErrInvalidImportFile
}

// CheckImportHeader validates the first line of an import file. Columns are
// separated by ';' when the line has one, else by ','; names are matched
// case-insensitively.
func CheckImportHeader(header string) error {
	header = strings.TrimPrefix(strings.TrimSpace(header), "\ufeff")

	sep := ","
	if strings.Contains(header, ";") {
		sep = ";"
	}
	present := map[string]bool{}
	for _, col := range strings.Split(header, sep) {
		present[strings.ToLower(strings.TrimSpace(col))] = true
	}

	var missing []string
	for _, col := range ImportColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ImportHeaderError{Missing: missing}
	}
	return nil
}
