package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jeovahfialho/invest-analyzer/internal/analytics"
	"github.com/jeovahfialho/invest-analyzer/internal/catalog"
	"github.com/jeovahfialho/invest-analyzer/internal/config"
	"github.com/jeovahfialho/invest-analyzer/internal/domain"
	"github.com/jeovahfialho/invest-analyzer/internal/ingestion"
	"github.com/jeovahfialho/invest-analyzer/internal/quote"
	"github.com/jeovahfialho/invest-analyzer/internal/service"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/cache"
	"github.com/jeovahfialho/invest-analyzer/internal/storage/postgres"
	pkglogger "github.com/jeovahfialho/invest-analyzer/pkg/logger"
)

func main() {
	cfg := config.Load()
	if err := pkglogger.Init(cfg.LogLevel, cfg.LogFormat, cfg.Environment == "development"); err != nil {
		fmt.Println("Erro ao inicializar logger:", err)
		os.Exit(1)
	}
	defer pkglogger.Close()

	var rootCmd = &cobra.Command{
		Use:   "invest-analyzer",
		Short: "Invest Analyzer CLI",
		Long: `CLI para análise de índices de mercado.
Permite semear o catálogo, carregar cotações e consultar oportunidades.`,
	}

	// Comando seed
	var seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Semeia o catálogo de segmentos e índices",
		Long: `Grava os segmentos e índices do catálogo embutido no banco.
Idempotente: registros já existentes são preservados.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedCatalog()
		},
	}

	// Comando load
	var loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Carrega cotações históricas dos índices",
		Long: `Busca cotações diárias na fonte e grava no banco.
Sem --from, carrega os últimos LOAD_DEFAULT_DAYS dias.
Recarregar o mesmo período é seguro: linhas existentes são atualizadas.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, _ := cmd.Flags().GetStringSlice("tickers")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			return loadQuotes(tickers, from, to)
		},
	}

	loadCmd.Flags().StringSliceP("tickers", "t", nil, "Tickers específicos (padrão: todos os índices ativos)")
	loadCmd.Flags().StringP("from", "f", "", "Data inicial (YYYY-MM-DD)")
	loadCmd.Flags().String("to", "", "Data final (YYYY-MM-DD)")

	// Comando classify
	var classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Classifica todos os segmentos e grava oportunidades",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("dias")
			return classifySegments(days)
		},
	}

	classifyCmd.Flags().IntP("dias", "d", 0, "Janela de análise em dias (padrão: DEFAULT_WINDOW_DAYS)")

	// Comando query
	var queryCmd = &cobra.Command{
		Use:   "query [segmento-id]",
		Short: "Consulta métricas de um segmento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("dias")
			return querySegment(args[0], days)
		},
	}

	queryCmd.Flags().IntP("dias", "d", 0, "Janela de análise em dias (padrão: DEFAULT_WINDOW_DAYS)")

	// Comando opportunities
	var opportunitiesCmd = &cobra.Command{
		Use:   "opportunities",
		Short: "Lista as oportunidades mais recentes por segmento",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, _ := cmd.Flags().GetBool("historico")
			return listOpportunities(history)
		},
	}

	opportunitiesCmd.Flags().Bool("historico", false, "Mostra o histórico completo de análises")

	// Comando health
	var healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Verifica saúde do sistema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkHealth()
		},
	}

	// Adiciona todos os comandos
	rootCmd.AddCommand(seedCmd, loadCmd, classifyCmd, queryCmd, opportunitiesCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// seedCatalog grava o catálogo embutido no banco
func seedCatalog() error {
	ctx := context.Background()
	cfg := config.Load()

	pool, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Println("🌱 Semeando catálogo de segmentos e índices...")

	segmentService := service.NewSegmentService(pool, nil)
	if err := segmentService.SeedCatalog(ctx); err != nil {
		return fmt.Errorf("erro ao semear catálogo: %w", err)
	}

	fmt.Printf("✅ Catálogo semeado: %d segmentos, %d índices\n",
		len(catalog.Segments()), len(catalog.Indices()))
	fmt.Println("\n💡 Próximo passo: use 'load' para carregar as cotações históricas")

	return nil
}

// loadQuotes executa uma carga e imprime o relatório
func loadQuotes(tickers []string, fromStr, toStr string) error {
	ctx := context.Background()
	cfg := config.Load()

	pool, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCache := connectRedis(cfg)
	if redisCache != nil {
		defer redisCache.Close()
	}

	params := ingestion.LoadParams{Tickers: tickers}
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return fmt.Errorf("data inicial inválida: %w", err)
		}
		params.From = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fmt.Errorf("data final inválida: %w", err)
		}
		params.To = parsed
	}

	quoteClient := quote.NewClient(
		quote.WithBaseURL(cfg.QuoteBaseURL),
		quote.WithTimeout(cfg.QuoteTimeout),
	)
	store := ingestion.NewStore(pool)
	loader := ingestion.NewLoader(quoteClient, store, cfg.QuoteMinInterval, cfg.QuoteTimeout)
	loadService := service.NewLoadService(loader, redisCache, cfg.LoadDefaultDays)

	fmt.Println("📥 Carregando cotações históricas...")

	report, err := loadService.Load(ctx, params)
	if err != nil {
		return fmt.Errorf("erro na carga: %w", err)
	}

	fmt.Println()
	for _, result := range report.Results {
		if result.Error != "" {
			fmt.Printf("❌ %s: %s\n", result.Ticker, result.Error)
			continue
		}

		fmt.Printf("✅ %s: %d linhas", result.Ticker, result.RowsLoaded)
		if result.RowsRejected > 0 {
			fmt.Printf(" (%d rejeitadas)", result.RowsRejected)
		}
		fmt.Println()
	}

	fmt.Printf("\n📊 Resumo da carga %s:\n", report.RunID)
	fmt.Printf("├─ Índices carregados: %d de %d\n", report.IndicesSucceeded, report.IndicesAttempted)
	fmt.Printf("├─ Linhas gravadas: %s\n", formatNumber(report.TotalRowsUpserted))
	fmt.Printf("├─ Linhas rejeitadas: %s\n", formatNumber(report.TotalRowsRejected))
	if report.DateRangeCovered != nil {
		fmt.Printf("└─ Período coberto: %s a %s\n", report.DateRangeCovered.From, report.DateRangeCovered.To)
	} else {
		fmt.Println("└─ Período coberto: nenhum dado gravado")
	}

	if len(report.Failures) > 0 {
		fmt.Println("\n💡 Use 'load -t TICKER' para repetir apenas os índices com falha")
	}

	return nil
}

// classifySegments roda a classificação de todos os segmentos
func classifySegments(days int) error {
	ctx := context.Background()
	cfg := config.Load()

	pool, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Cria serviços sem cache (passa nil)
	policy := analytics.Policy{
		MomentumDivisor: cfg.MomentumDivisor,
		RiskLowMax:      cfg.RiskLowMax,
		RiskMediumMax:   cfg.RiskMediumMax,
		SampleWeight:    cfg.ConfSampleWeight,
		AgreementWeight: cfg.ConfAgreementWeight,
		VolWeight:       cfg.ConfVolWeight,
		SampleRef:       cfg.ConfSampleRef,
	}
	metricsService := service.NewMetricsService(pool, nil, cfg.DefaultWindowDays)
	opportunityService := service.NewOpportunityService(pool, nil, metricsService, policy, cfg.DefaultWindowDays)

	fmt.Println("🔍 Classificando segmentos...")

	opportunities, err := opportunityService.ClassifyAll(ctx, days)
	if err != nil {
		return fmt.Errorf("erro ao classificar: %w", err)
	}

	fmt.Printf("\n📊 %d segmento(s) classificado(s):\n\n", len(opportunities))
	printOpportunities(opportunities)

	return nil
}

// querySegment consulta as métricas de um segmento
func querySegment(idArg string, days int) error {
	ctx := context.Background()
	cfg := config.Load()

	segmentID, err := strconv.Atoi(idArg)
	if err != nil || segmentID <= 0 {
		return fmt.Errorf("id de segmento inválido: %s", idArg)
	}

	pool, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Cria serviço sem cache (passa nil)
	metricsService := service.NewMetricsService(pool, nil, cfg.DefaultWindowDays)

	fmt.Printf("🔍 Calculando métricas do segmento %d...\n", segmentID)

	result, err := metricsService.GetSegmentMetrics(ctx, segmentID, days)
	if err != nil {
		return fmt.Errorf("erro ao buscar métricas: %w", err)
	}

	fmt.Printf("\n📊 %s (últimos %d dias):\n", result.Segmento, result.Dias)

	if result.Amostras == 0 {
		fmt.Println("└─ Sem dados na janela. Use 'load' para carregar cotações.")
		return nil
	}

	fmt.Printf("├─ Retorno médio diário: %.2f%%\n", result.RetornoMedio)
	fmt.Printf("├─ Volatilidade: %.2f%%\n", result.Volatilidade)
	fmt.Printf("├─ Preço máximo: %.2f\n", result.PrecoMaximo)
	fmt.Printf("├─ Preço mínimo: %.2f\n", result.PrecoMinimo)
	fmt.Printf("├─ Volume total: %s\n", formatNumber(result.VolumeTotal))
	fmt.Printf("├─ Índices com dados: %d\n", result.Indices)
	fmt.Printf("├─ Amostras: %d\n", result.Amostras)
	fmt.Printf("└─ Período: %s a %s\n",
		result.PeriodoInicio.Format("02/01/2006"),
		result.PeriodoFim.Format("02/01/2006"))

	return nil
}

// listOpportunities mostra as oportunidades gravadas
func listOpportunities(history bool) error {
	ctx := context.Background()
	cfg := config.Load()

	pool, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Cria serviço sem cache (passa nil)
	metricsService := service.NewMetricsService(pool, nil, cfg.DefaultWindowDays)
	opportunityService := service.NewOpportunityService(pool, nil, metricsService, analytics.DefaultPolicy(), cfg.DefaultWindowDays)

	opportunities, err := opportunityService.GetOpportunities(ctx, nil, history)
	if err != nil {
		return fmt.Errorf("erro ao buscar oportunidades: %w", err)
	}

	if len(opportunities) == 0 {
		fmt.Println("❌ Nenhuma oportunidade gravada")
		fmt.Println("💡 Use 'classify' para analisar os segmentos")
		return nil
	}

	fmt.Printf("📊 %d oportunidade(s):\n\n", len(opportunities))
	printOpportunities(opportunities)

	return nil
}

// printOpportunities imprime oportunidades no formato de árvore
func printOpportunities(opportunities []domain.Opportunity) {
	for _, opp := range opportunities {
		fmt.Printf("%s %s\n", recommendationIcon(opp.Tipo), opp.Titulo)
		fmt.Printf("├─ Recomendação: %s\n", opp.Tipo)
		fmt.Printf("├─ Risco: %s\n", opp.NivelRisco)
		fmt.Printf("├─ Retorno potencial: %.2f%%\n", opp.PotencialRetorno)
		fmt.Printf("├─ Confiança: %.0f%%\n", opp.Confianca*100)
		fmt.Printf("└─ Análise: %s\n\n", opp.DataAnalise.Format("02/01/2006"))
	}
}

func recommendationIcon(tipo domain.Recommendation) string {
	switch tipo {
	case domain.RecommendationBuy:
		return "🟢"
	case domain.RecommendationSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// checkHealth verifica a saúde do sistema
func checkHealth() error {
	ctx := context.Background()
	cfg := config.Load()

	fmt.Print("🏥 Verificando saúde do sistema...\n\n")

	// Testa PostgreSQL
	fmt.Print("PostgreSQL: ")
	pool, err := connectDB(cfg)
	if err != nil {
		fmt.Printf("❌ Erro: %v\n", err)
	} else {
		defer pool.Close()

		// Testa query simples
		var result int
		err = pool.QueryRow(ctx, "SELECT 1").Scan(&result)
		if err != nil {
			fmt.Printf("❌ Erro na query: %v\n", err)
		} else {
			fmt.Println("✅ OK")
		}
	}

	// Testa Redis
	fmt.Print("Redis: ")
	redisClient := connectRedis(cfg)
	if redisClient == nil {
		fmt.Println("❌ Não disponível")
	} else {
		defer redisClient.Close()

		// Testa ping
		err = redisClient.HealthCheck(ctx)
		if err != nil {
			fmt.Printf("❌ Erro: %v\n", err)
		} else {
			fmt.Println("✅ OK")
		}
	}

	fmt.Println("\n✅ Verificação concluída!")
	return nil
}

// connectDB conecta ao PostgreSQL
func connectDB(cfg *config.Config) (*pgxpool.Pool, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco: %w", err)
	}
	return db.Pool(), nil
}

// connectRedis conecta ao Redis
func connectRedis(cfg *config.Config) *cache.RedisCache {
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		fmt.Printf("Aviso: Redis não disponível, continuando sem cache: %v\n", err)
		return nil
	}
	return redisCache
}

// formatNumber formata número com separadores de milhares
func formatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	// Converte para string
	str := fmt.Sprintf("%d", n)

	// Adiciona pontos como separadores
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += "."
		}
		result += string(char)
	}

	return result
}
