package tftp

import "net"

// ClientRRQ is the client-side read (download) engine (§4.3.3). It sends
// the RRQ to server (typically port 69), learns the server's ephemeral TID
// from the source of the first DATA packet, and then behaves like the
// write-side skeleton (§4.3.1) from block 0 — except the very first
// expected packet is DATA(1), not a reply to ACK(0).
func ClientRRQ(conn net.PacketConn, server net.Addr, filename, mode string, file WriteFile, cfg RetransmitConfig) Result {
	req := RRQ{Filename: filename, Mode: mode}.Encode()

	var learnedPeer net.Addr
	classify := func(pkt Packet, from net.Addr) Classification {
		switch p := pkt.(type) {
		case DATA:
			if p.Block == 1 {
				learnedPeer = from
				return ClassAccept
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

	pkt, err := SendAndWait(conn, server, req, cfg, classify)
	if err != nil {
		return resultFromErr(err)
	}
	data := pkt.(DATA)

	done, werr := writeBlock(conn, learnedPeer, file, data.Block, data.Payload)
	if werr != nil {
		return Result{Outcome: Aborted, Err: werr}
	}
	if done {
		return Result{Outcome: Complete}
	}

	return writerLoop(conn, learnedPeer, file, cfg, 1)
}

// ClientWRQ is the client-side write (upload) engine (§4.3.4). It sends the
// WRQ to server, learns the server's ephemeral TID from the source of
// ACK(0), and then behaves exactly like the read-side skeleton (§4.3.2)
// from block 1.
func ClientWRQ(conn net.PacketConn, server net.Addr, filename, mode string, file ReadFile, cfg RetransmitConfig) Result {
	req := WRQ{Filename: filename, Mode: mode}.Encode()

	var learnedPeer net.Addr
	classify := func(pkt Packet, from net.Addr) Classification {
		switch p := pkt.(type) {
		case ACK:
			if p.Block == 0 {
				learnedPeer = from
				return ClassAccept
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

	_, err := SendAndWait(conn, server, req, cfg, classify)
	if err != nil {
		return resultFromErr(err)
	}

	return readerLoop(conn, learnedPeer, file, cfg, 1)
}
