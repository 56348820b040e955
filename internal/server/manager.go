package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/Merith-TK/tftpd/internal/config"
	"github.com/Merith-TK/tftpd/internal/fs"
	"github.com/Merith-TK/tftpd/internal/tftplog"
)

// Manager handles the lifecycle of the server's listeners. The teacher's
// Manager hosted a slice of protocol servers (FTP, FTPS, ...); this build
// has exactly one, the TFTP dispatcher, but keeps the Server interface so
// startup/shutdown stays uniform.
type Manager struct {
	config  *config.Config
	logger  *tftplog.Logger
	root    *fs.Root
	servers []Server
	wg      sync.WaitGroup
}

// Server is a protocol listener lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// NewManager creates a new server manager.
func NewManager(cfg *config.Config, logger *tftplog.Logger, root *fs.Root) *Manager {
	return &Manager{
		config:  cfg,
		logger:  logger,
		root:    root,
		servers: make([]Server, 0, 1),
	}
}

// Start starts all configured servers.
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info("Starting server manager...")

	m.servers = append(m.servers, NewTFTPServer(m.config, m.logger, m.root))

	for _, srv := range m.servers {
		m.wg.Add(1)
		go func(s Server) {
			defer m.wg.Done()
			m.logger.Info("Starting %s server", s.Name())
			if err := s.Start(ctx); err != nil {
				m.logger.Error("%s server exited: %v", s.Name(), err)
			}
		}(srv)
	}

	m.logger.Info("All servers started")
	return nil
}

// Stop stops all servers and waits for their goroutines to return.
func (m *Manager) Stop() error {
	m.logger.Info("Stopping all servers...")

	var firstErr error
	for _, srv := range m.servers {
		if err := srv.Stop(); err != nil {
			m.logger.Error("Failed to stop %s server: %v", srv.Name(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("stop %s: %w", srv.Name(), err)
			}
		}
	}

	m.wg.Wait()
	m.logger.Info("All servers stopped")
	return firstErr
}
