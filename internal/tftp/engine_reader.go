package tftp

import (
	"io"
	"net"
)

// ServerRRQ is the server-side read-request engine (§4.3.2). The caller has
// already decoded the RRQ, bound a fresh ephemeral socket, and opened the
// source file for reading before calling this.
func ServerRRQ(conn net.PacketConn, peer net.Addr, file ReadFile, cfg RetransmitConfig) Result {
	return readerLoop(conn, peer, file, cfg, 1)
}

// readerLoop is the read-side skeleton shared by ServerRRQ and, after its
// own TID-negotiation preamble, ClientWRQ (§4.3.2, §4.3.4). It reads up to
// BlockSize octets, sends DATA(block), waits for the matching ACK, and
// repeats until a short read signals the final block.
func readerLoop(conn net.PacketConn, peer net.Addr, file ReadFile, cfg RetransmitConfig, startBlock uint16) Result {
	peerAddr := peer.String()
	buf := make([]byte, BlockSize)
	currentBlock := startBlock

	for {
		n, rerr := io.ReadFull(file, buf)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			conn.WriteTo(ERROR{Code: ErrCodeUndefined, Message: rerr.Error()}.Encode(), peer)
			return Result{Outcome: Aborted, Err: rerr}
		}
		payload := append([]byte(nil), buf[:n]...)
		dataPkt := DATA{Block: currentBlock, Payload: payload}
		encoded := dataPkt.Encode()

		classify := func(pkt Packet, from net.Addr) Classification {
			if !sameHost(from.String(), peerAddr) {
				return ClassStray
			}
			switch p := pkt.(type) {
			case ACK:
				if p.Block == currentBlock {
					return ClassAccept
				}
				if p.Block < currentBlock {
					return ClassIgnore // stale ACK
				}
				conn.WriteTo(illegalOperationError().Encode(), from)
				return ClassFatal
			case ERROR:
				return ClassFatal
			default:
				conn.WriteTo(illegalOperationError().Encode(), from)
				return ClassFatal
			}
		}

		_, err := SendAndWait(conn, peer, encoded, cfg, classify)
		if err != nil {
			return resultFromErr(err)
		}

		if n < BlockSize {
			return Result{Outcome: Complete}
		}
		if currentBlock == 65535 {
			return Result{Outcome: Fatal, Err: ErrBlockWraparound}
		}
		currentBlock++
	}
}
