// Package catalog carrega o catálogo fixo de índices e segmentos usado no
// seed do banco. Dados de referência, nunca mutados em runtime.
package catalog

type SegmentSeed struct {
	Nome      string
	Descricao string
}

type IndexSeed struct {
	Ticker    string
	Descricao string
	Pais      string
	Segmento  string
	Peso      float64
}

func Segments() []SegmentSeed {
	return []SegmentSeed{
		{Nome: "Mercado Amplo - EUA", Descricao: "Índices amplos do mercado americano"},
		{Nome: "Tecnologia", Descricao: "Empresas de tecnologia e inovação"},
		{Nome: "Energia", Descricao: "Setor de energia, petróleo e gás"},
		{Nome: "Financeiro", Descricao: "Bancos e instituições financeiras"},
		{Nome: "Saúde", Descricao: "Farmacêuticas e biotecnologia"},
		{Nome: "Consumo Discricionário", Descricao: "Varejo e bens de consumo"},
		{Nome: "Small Caps - EUA", Descricao: "Empresas de pequena capitalização"},
		{Nome: "Mercados Emergentes", Descricao: "Mercados em desenvolvimento"},
		{Nome: "Mercado Amplo - Brasil", Descricao: "Índices amplos do mercado brasileiro"},
	}
}

func Indices() []IndexSeed {
	return []IndexSeed{
		{Ticker: "^GSPC", Descricao: "S&P 500", Pais: "Estados Unidos", Segmento: "Mercado Amplo - EUA", Peso: 100},
		{Ticker: "^DJI", Descricao: "Dow Jones Industrial Average", Pais: "Estados Unidos", Segmento: "Mercado Amplo - EUA", Peso: 100},
		{Ticker: "^IXIC", Descricao: "NASDAQ Composite", Pais: "Estados Unidos", Segmento: "Tecnologia", Peso: 100},
		{Ticker: "^RUT", Descricao: "Russell 2000", Pais: "Estados Unidos", Segmento: "Small Caps - EUA", Peso: 100},
		{Ticker: "XLK", Descricao: "Technology Select Sector SPDR Fund", Pais: "Estados Unidos", Segmento: "Tecnologia", Peso: 100},
		{Ticker: "XLE", Descricao: "Energy Select Sector SPDR Fund", Pais: "Estados Unidos", Segmento: "Energia", Peso: 100},
		{Ticker: "XLF", Descricao: "Financial Select Sector SPDR Fund", Pais: "Estados Unidos", Segmento: "Financeiro", Peso: 100},
		{Ticker: "XLV", Descricao: "Health Care Select Sector SPDR Fund", Pais: "Estados Unidos", Segmento: "Saúde", Peso: 100},
		{Ticker: "XLY", Descricao: "Consumer Discretionary Select Sector SPDR Fund", Pais: "Estados Unidos", Segmento: "Consumo Discricionário", Peso: 100},
		{Ticker: "EWZ", Descricao: "iShares MSCI Brazil ETF", Pais: "Brasil", Segmento: "Mercados Emergentes", Peso: 100},
		{Ticker: "^BVSP", Descricao: "Ibovespa", Pais: "Brasil", Segmento: "Mercado Amplo - Brasil", Peso: 100},
	}
}

// Tickers devolve só os símbolos, na ordem de coleta.
func Tickers() []string {
	seeds := Indices()
	tickers := make([]string, len(seeds))
	for i, s := range seeds {
		tickers[i] = s.Ticker
	}
	return tickers
}
