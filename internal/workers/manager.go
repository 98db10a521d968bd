package workers

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Manager starts and stops the registered workers in order.
type Manager struct {
	workers []Worker
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, workers ...Worker) *Manager {
	return &Manager{
		workers: workers,
		logger:  logger,
	}
}

// Start starts all workers
func (m *Manager) Start() error {
	m.logger.Info("Starting worker manager", "worker_count", len(m.workers))

	for _, worker := range m.workers {
		if err := worker.Start(); err != nil {
			return errors.Wrapf(err, "start worker %s", worker.Name())
		}
		m.logger.Info("Worker started", "name", worker.Name())
	}

	return nil
}

// Stop stops all workers
func (m *Manager) Stop() {
	for _, worker := range m.workers {
		m.logger.Info("Stopping worker", "name", worker.Name())
		worker.Stop()
	}

	m.logger.Info("All workers stopped")
}
