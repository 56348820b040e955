package tftp

import "net"

// ServerWRQ is the server-side write-request engine (§4.3.1). The caller
// (the dispatcher, C4) has already decoded the WRQ, bound a fresh ephemeral
// socket, and opened/truncated the destination file before calling this.
func ServerWRQ(conn net.PacketConn, peer net.Addr, file WriteFile, cfg RetransmitConfig) Result {
	return writerLoop(conn, peer, file, cfg, 0)
}

// writerLoop is the write-side skeleton shared by ServerWRQ and, after its
// own TID-negotiation preamble, ClientRRQ (§4.3.1, §4.3.3). It sends
// ACK(currentBlock), waits for the next DATA, and repeats until a short
// (or exactly-boundary) DATA completes the transfer.
func writerLoop(conn net.PacketConn, peer net.Addr, file WriteFile, cfg RetransmitConfig, currentBlock uint16) Result {
	peerAddr := peer.String()

	for {
		ack := ACK{Block: currentBlock}.Encode()

		classify := func(pkt Packet, from net.Addr) Classification {
			if !sameHost(from.String(), peerAddr) {
				return ClassStray
			}
			switch p := pkt.(type) {
			case DATA:
				if p.Block == currentBlock+1 {
					return ClassAccept
				}
				if p.Block <= currentBlock {
					// Our ACK was lost; the sender retransmitted. Re-ack
					// without writing again (I3).
					conn.WriteTo(ACK{Block: p.Block}.Encode(), from)
					return ClassDuplicate
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

		pkt, err := SendAndWait(conn, peer, ack, cfg, classify)
		if err != nil {
			return resultFromErr(err)
		}
		data := pkt.(DATA)

		done, werr := writeBlock(conn, peer, file, data.Block, data.Payload)
		if werr != nil {
			return Result{Outcome: Aborted, Err: werr}
		}
		if done {
			return Result{Outcome: Complete}
		}
		if data.Block == 65535 {
			return Result{Outcome: Fatal, Err: ErrBlockWraparound}
		}
		currentBlock = data.Block
	}
}

// writeBlock writes one DATA payload to the destination file. If the
// payload is short (< BlockSize octets), this is the final block: the
// closing ACK is sent here and done is true (§4.3.1 step 1: "send the final
// ACK first").
func writeBlock(conn net.PacketConn, peer net.Addr, file WriteFile, block uint16, payload []byte) (done bool, err error) {
	if _, werr := file.Write(payload); werr != nil {
		conn.WriteTo(ERROR{Code: ErrCodeDiskFull, Message: werr.Error()}.Encode(), peer)
		return false, werr
	}
	if len(payload) < BlockSize {
		conn.WriteTo(ACK{Block: block}.Encode(), peer)
		return true, nil
	}
	return false, nil
}
