package domain

import "time"

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"

	// RiskUnknown sinaliza janela sem dados. Estado válido, não erro.
	RiskUnknown RiskLevel = "unknown"
)

// Opportunity é o sinal derivado de um segmento. PotencialRetorno em
// percentual com sinal; Confianca em [0,1]. Linhas gravadas em
// oportunidades_investimento formam o histórico de sinais.
type Opportunity struct {
	ID               int64          `db:"id" json:"id,omitempty"`
	IDSegmento       int            `db:"id_segmento" json:"id_segmento"`
	Segmento         string         `db:"segmento" json:"segmento"`
	Titulo           string         `db:"titulo" json:"titulo"`
	Descricao        string         `db:"descricao" json:"descricao"`
	Tipo             Recommendation `db:"tipo_oportunidade" json:"tipo"`
	DataAnalise      time.Time      `db:"data_analise" json:"data_analise"`
	PotencialRetorno float64        `db:"potencial_retorno" json:"potencial_retorno"`
	NivelRisco       RiskLevel      `db:"nivel_risco" json:"nivel_risco"`
	Confianca        float64        `db:"confianca" json:"confianca"`
	Ativo            bool           `db:"ativo" json:"ativo"`
	CriadoEm         time.Time      `db:"criado_em" json:"criado_em"`
}
