// Package scheduler agenda cargas e classificações recorrentes via
// expressões cron de cinco campos.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jeovahfialho/invest-analyzer/pkg/logger"
)

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// AddJob registra um job nomeado. Cada execução recebe um contexto próprio;
// erro de execução é logado e não derruba o agendador.
func (s *Scheduler) AddJob(name, schedule string, fn func(context.Context) error) error {
	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info("job iniciado", zap.String("job", name))

		if err := fn(context.Background()); err != nil {
			logger.Error("job falhou",
				zap.String("job", name),
				zap.Error(err))
			return
		}

		logger.Info("job concluído", zap.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("agenda inválida para %s: %w", name, err)
	}

	logger.Info("job registrado",
		zap.String("job", name),
		zap.String("agenda", schedule))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop espera os jobs em andamento terminarem.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
