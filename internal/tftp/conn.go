package tftp

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrExhausted is returned by SendAndWait when the packet has been resent
// MAX_RETRIES times and the wait after the last resend also timed out, i.e.
// after MAX_RETRIES+1 unanswered sends (§4.2).
var ErrExhausted = errors.New("tftp: retries exhausted")

// ErrAborted is returned when a Classifier judges a datagram unrecoverable
// for reasons other than an inbound ERROR packet (e.g. an out-of-range
// block number) and has already notified the peer itself.
var ErrAborted = errors.New("tftp: aborted")

// Classification is the verdict an engine's Classifier renders for an
// inbound datagram during a send-and-wait round (§4.2).
type Classification int

const (
	// ClassAccept ends the wait: the datagram is the expected reply.
	ClassAccept Classification = iota
	// ClassDuplicate means the engine has already re-sent whatever
	// acknowledgement this duplicate warrants; keep waiting.
	ClassDuplicate
	// ClassStray means the datagram came from an unexpected peer; an
	// ERROR 5 is sent to its source and the wait continues (I1).
	ClassStray
	// ClassFatal ends the wait with failure — the peer reported an error,
	// or the datagram is otherwise unrecoverable for this transfer.
	ClassFatal
	// ClassIgnore discards the datagram silently and keeps waiting.
	ClassIgnore
)

// Classifier inspects one decoded inbound packet and its source address and
// decides how SendAndWait should treat it.
type Classifier func(pkt Packet, from net.Addr) Classification

// RetransmitConfig bounds the send-wait-retry discipline (§6 defaults).
type RetransmitConfig struct {
	Timeout    time.Duration
	MaxRetries int
}

// DefaultRetransmitConfig matches §6: TIMEOUT=3s, MAX_RETRIES=5.
func DefaultRetransmitConfig() RetransmitConfig {
	return RetransmitConfig{Timeout: 3 * time.Second, MaxRetries: 5}
}

// SendAndWait implements the retransmit primitive C2: it sends payload to
// peer, then waits up to cfg.Timeout for a datagram that the classifier
// accepts. Timeouts cause a resend, up to cfg.MaxRetries times. It is the
// single suspension point of every engine iteration (§5).
func SendAndWait(conn net.PacketConn, peer net.Addr, payload []byte, cfg RetransmitConfig, classify Classifier) (Packet, error) {
	buf := make([]byte, 4+BlockSize)
	retries := 0

	for {
		if _, err := conn.WriteTo(payload, peer); err != nil {
			return nil, fmt.Errorf("tftp: send: %w", err)
		}

		if err := conn.SetReadDeadline(time.Now().Add(cfg.Timeout)); err != nil {
			return nil, fmt.Errorf("tftp: set read deadline: %w", err)
		}

		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					break // fall through to retransmit
				}
				return nil, fmt.Errorf("tftp: receive: %w", err)
			}

			pkt, derr := Decode(buf[:n])
			if derr != nil {
				if !sameHost(from.String(), peer.String()) {
					// Garbage from an unrelated host must not disturb this
					// transfer (I1): treat it as stray, not fatal.
					conn.WriteTo(ERROR{Code: ErrCodeUnknownTID, Message: "Unknown transfer ID"}.Encode(), from)
					continue
				}
				conn.WriteTo(ERROR{Code: ErrCodeIllegalOperation, Message: "Illegal TFTP operation"}.Encode(), from)
				return nil, ErrMalformed
			}

			switch classify(pkt, from) {
			case ClassAccept:
				return pkt, nil
			case ClassDuplicate, ClassIgnore:
				continue
			case ClassStray:
				conn.WriteTo(ERROR{Code: ErrCodeUnknownTID, Message: "Unknown transfer ID"}.Encode(), from)
				continue
			case ClassFatal:
				if e, ok := pkt.(ERROR); ok {
					return nil, &ProtocolError{Code: e.Code, Err: fmt.Errorf("peer reported error %d: %s", e.Code, e.Message)}
				}
				return nil, ErrAborted
			}
		}

		retries++
		if retries > cfg.MaxRetries {
			return nil, ErrExhausted
		}
	}
}
