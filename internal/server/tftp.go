// Package server hosts the TFTP listener: the socket that accepts new
// RRQ/WRQ packets and, for each, spawns a goroutine with a freshly bound
// ephemeral socket to run the transfer (§4.2, "fork-per-transfer" recast as
// goroutine-per-transfer; §1, the teacher's listener/dispatcher pattern).
package server

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/Merith-TK/tftpd/internal/config"
	"github.com/Merith-TK/tftpd/internal/fs"
	"github.com/Merith-TK/tftpd/internal/tftp"
	"github.com/Merith-TK/tftpd/internal/tftplog"
)

// acceptPollInterval bounds how long the accept loop blocks on a single
// read before re-checking for shutdown.
const acceptPollInterval = 1 * time.Second

// TFTPServer is the RFC 1350 listener.
type TFTPServer struct {
	config *config.Config
	logger *tftplog.Logger
	root   *fs.Root

	conn net.PacketConn
	done chan struct{}
}

// NewTFTPServer creates a TFTP listener bound to cfg.Bind once Start runs.
func NewTFTPServer(cfg *config.Config, logger *tftplog.Logger, root *fs.Root) *TFTPServer {
	return &TFTPServer{
		config: cfg,
		logger: logger,
		root:   root,
		done:   make(chan struct{}),
	}
}

func (s *TFTPServer) Name() string { return "TFTP" }

// Start binds the accept socket and dispatches one goroutine per inbound
// RRQ/WRQ until ctx is cancelled or Stop is called.
func (s *TFTPServer) Start(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.config.Bind)
	if err != nil {
		return err
	}
	s.conn = conn
	s.logger.Info("TFTP listening on %s, root %s", s.config.Bind, s.config.Root)

	buf := make([]byte, 4+tftp.BlockSize)
	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			s.conn.Close()
			return nil
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(acceptPollInterval))
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			select {
			case <-s.done:
				return nil
			default:
				s.logger.Error("accept read failed: %v", err)
				continue
			}
		}

		pkt, err := tftp.Decode(buf[:n])
		if err != nil {
			s.logger.Debug("malformed request from %s: %v", from, err)
			continue
		}

		switch p := pkt.(type) {
		case tftp.RRQ:
			go s.handleRRQ(p, from)
		case tftp.WRQ:
			go s.handleWRQ(p, from)
		default:
			s.logger.Debug("unexpected opcode %d from %s on accept socket", pkt.Opcode(), from)
		}
	}
}

// Stop closes the accept socket, unblocking Start's read loop.
func (s *TFTPServer) Stop() error {
	close(s.done)
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *TFTPServer) retransmitConfig() tftp.RetransmitConfig {
	return tftp.RetransmitConfig{
		Timeout:    s.config.Timeout,
		MaxRetries: s.config.MaxRetries,
	}
}

// dial opens a fresh ephemeral UDP socket for one transfer's TID, per §4.2.
func (s *TFTPServer) dial() (net.PacketConn, error) {
	return net.ListenPacket("udp", ":0")
}

func (s *TFTPServer) handleRRQ(req tftp.RRQ, peer net.Addr) {
	s.logger.Debug("RRQ %s from %s", req.Filename, peer)

	file, err := s.root.Open(req.Filename)
	if err != nil {
		s.rejectRequest(peer, err)
		return
	}
	defer file.Close()

	conn, err := s.dial()
	if err != nil {
		s.logger.Error("RRQ %s: could not bind transfer socket: %v", req.Filename, err)
		return
	}
	defer conn.Close()

	result := tftp.ServerRRQ(conn, peer, file, s.retransmitConfig())
	s.logReach(req.Filename, peer, result)
}

func (s *TFTPServer) handleWRQ(req tftp.WRQ, peer net.Addr) {
	s.logger.Debug("WRQ %s from %s", req.Filename, peer)

	file, err := s.root.Create(req.Filename)
	if err != nil {
		s.rejectRequest(peer, err)
		return
	}
	defer file.Close()

	conn, err := s.dial()
	if err != nil {
		s.logger.Error("WRQ %s: could not bind transfer socket: %v", req.Filename, err)
		return
	}
	defer conn.Close()

	result := tftp.ServerWRQ(conn, peer, file, s.retransmitConfig())
	s.logReach(req.Filename, peer, result)
}

// rejectRequest answers a request that failed before a transfer socket was
// even opened, mapping the filesystem error to the error codes of §4.3.5.
func (s *TFTPServer) rejectRequest(peer net.Addr, err error) {
	code := tftp.ErrCodeUndefined
	switch {
	case os.IsNotExist(err):
		code = tftp.ErrCodeFileNotFound
	case errors.Is(err, fs.ErrAccessViolation):
		code = tftp.ErrCodeAccessViolation
	case os.IsPermission(err):
		code = tftp.ErrCodeAccessViolation
	}

	pkt := tftp.ERROR{Code: code, Message: err.Error()}
	if len(pkt.Message) > 254 {
		pkt.Message = pkt.Message[:254]
	}
	s.conn.WriteTo(pkt.Encode(), peer)
	s.logger.Debug("rejected request from %s: %v", peer, err)
}

func (s *TFTPServer) logReach(filename string, peer net.Addr, result tftp.Result) {
	if result.Err != nil {
		s.logger.Warn("transfer %s with %s ended %s: %v", filename, peer, result.Outcome, result.Err)
		return
	}
	s.logger.Info("transfer %s with %s %s", filename, peer, result.Outcome)
}
