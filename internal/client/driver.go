// Package client drives a single TFTP transfer against a remote server: the
// get (RRQ) and put (WRQ) sides the cmd/tftp-get and cmd/tftp-put binaries
// wrap in a cobra command (§4.3.3, §4.3.4, §6).
package client

import (
	"fmt"
	"net"
	"os"

	"github.com/Merith-TK/tftpd/internal/tftp"
)

// DefaultPort is the well-known TFTP service port (§6).
const DefaultPort = 69

// DefaultMode is the only transfer mode this implementation supports (§1
// Non-goals: netascii and mail modes are out of scope).
const DefaultMode = "octet"

// ResolveServer appends DefaultPort to host if it names no port of its own.
func ResolveServer(host string) (string, error) {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	return fmt.Sprintf("%s:%d", host, DefaultPort), nil
}

// Get downloads remoteFile from server into localFile via a read request.
// On any outcome other than Complete, a partial localFile is removed (§7,
// propagation policy for aborted client-RRQ downloads).
func Get(server, remoteFile, localFile string, cfg tftp.RetransmitConfig) error {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return fmt.Errorf("client: resolve %s: %w", server, err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("client: bind local socket: %w", err)
	}
	defer conn.Close()

	f, err := os.OpenFile(localFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("client: create %s: %w", localFile, err)
	}

	result := tftp.ClientRRQ(conn, addr, remoteFile, DefaultMode, f, cfg)
	f.Close()

	if result.Outcome != tftp.Complete {
		os.Remove(localFile)
		return fmt.Errorf("client: transfer %s: %v", result.Outcome, result.Err)
	}
	return nil
}

// Put uploads localFile to server as remoteFile via a write request.
func Put(server, localFile, remoteFile string, cfg tftp.RetransmitConfig) error {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return fmt.Errorf("client: resolve %s: %w", server, err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("client: bind local socket: %w", err)
	}
	defer conn.Close()

	f, err := os.Open(localFile)
	if err != nil {
		return fmt.Errorf("client: open %s: %w", localFile, err)
	}
	defer f.Close()

	result := tftp.ClientWRQ(conn, addr, remoteFile, DefaultMode, f, cfg)
	if result.Outcome != tftp.Complete {
		return fmt.Errorf("client: transfer %s: %v", result.Outcome, result.Err)
	}
	return nil
}
