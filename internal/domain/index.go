package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Index struct {
	ID        int       `db:"id" json:"id"`
	Ticker    string    `db:"ticker" json:"ticker"`
	Descricao string    `db:"descricao" json:"descricao"`
	Pais      string    `db:"pais" json:"pais"`
	Ativo     bool      `db:"ativo" json:"ativo"`
	CriadoEm  time.Time `db:"criado_em" json:"criado_em"`
}

// PriceBar é uma observação diária de um índice, chave natural
// (id_indice, data_quotacao). Só a carga escreve nesta tabela; a análise
// lê e nunca muta.
type PriceBar struct {
	ID                 int64           `db:"id" json:"id"`
	IDIndice           int             `db:"id_indice" json:"id_indice"`
	DataQuotacao       time.Time       `db:"data_quotacao" json:"data_quotacao"`
	Abertura           decimal.Decimal `db:"abertura" json:"abertura"`
	Alta               decimal.Decimal `db:"alta" json:"alta"`
	Baixa              decimal.Decimal `db:"baixa" json:"baixa"`
	Fechamento         decimal.Decimal `db:"fechamento" json:"fechamento"`
	FechamentoAjustado decimal.Decimal `db:"fechamento_ajustado" json:"fechamento_ajustado"`
	Volume             int64           `db:"volume" json:"volume"`
	InseridoEm         time.Time       `db:"inserido_em" json:"inserido_em"`
}
