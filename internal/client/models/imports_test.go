package models

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckImportHeader(t *testing.T) {
	assert.NoError(t, CheckImportHeader(strings.SplitN(ImportTemplate, "\n", 2)[0]))
	assert.NoError(t, CheckImportHeader("\ufeffNome,Categoria,Descricao,Tags,Preco,Estoque\r\n"))

	err := CheckImportHeader("nome;preco;estoque")
	assert.ErrorIs(t, err, common.ErrInvalidImportFile)
	assert.EqualError(t, err, "Arquivo inválido. Faltam as colunas: categoria, descricao, tags")

	var he *ImportHeaderError
	require.ErrorAs(t, CheckImportHeader(""), &he)
	assert.Equal(t, ImportColumns, he.Missing)
}
