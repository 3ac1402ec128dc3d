package domain

import "time"

type Segment struct {
	ID        int       `db:"id" json:"id"`
	Nome      string    `db:"nome" json:"nome"`
	Descricao string    `db:"descricao" json:"descricao"`
	Ativo     bool      `db:"ativo" json:"ativo"`
	CriadoEm  time.Time `db:"criado_em" json:"criado_em"`
}

// SegmentSummary é a visão de listagem consumida pelo front: segmento ativo
// mais a contagem de índices vinculados.
type SegmentSummary struct {
	ID           int    `db:"id" json:"id"`
	Nome         string `db:"nome" json:"nome"`
	Descricao    string `db:"descricao" json:"descricao"`
	TotalIndices int    `db:"total_indices" json:"total_indices"`
}

// SegmentMetrics é derivado sob demanda, nunca persistido. Retorno médio e
// volatilidade em percentual; máximo sobre alta, mínimo sobre baixa.
// Amostras == 0 indica janela sem dados e estatísticas indefinidas (zeradas).
type SegmentMetrics struct {
	IDSegmento    int       `json:"id_segmento"`
	Segmento      string    `json:"segmento"`
	Dias          int       `json:"dias"`
	RetornoMedio  float64   `json:"retorno_medio"`
	Volatilidade  float64   `json:"volatilidade"`
	PrecoMaximo   float64   `json:"preco_maximo"`
	PrecoMinimo   float64   `json:"preco_minimo"`
	VolumeTotal   int64     `json:"volume_total"`
	Amostras      int       `json:"amostras"`
	Indices       int       `json:"indices"`
	PeriodoInicio time.Time `json:"periodo_inicio"`
	PeriodoFim    time.Time `json:"periodo_fim"`
}

// ChartSeries agrupa fechamentos de um índice no formato que o front espera:
// duas listas paralelas de datas e preços.
type ChartSeries struct {
	Datas  []string  `json:"datas"`
	Precos []float64 `json:"precos"`
}
