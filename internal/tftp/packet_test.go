package tftp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		pkt  Packet
	}{
		{"RRQ", RRQ{Filename: "boot.img", Mode: "octet"}},
		{"WRQ", WRQ{Filename: "upload/firmware.bin", Mode: "octet"}},
		{"DATA full block", DATA{Block: 1, Payload: bytes.Repeat([]byte{0xAB}, BlockSize)}},
		{"DATA short block", DATA{Block: 42, Payload: []byte("hello")}},
		{"DATA empty block", DATA{Block: 1, Payload: nil}},
		{"ACK", ACK{Block: 7}},
		{"ERROR", ERROR{Code: ErrCodeFileNotFound, Message: "File not found"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded := c.pkt.Encode()
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded.Opcode() != c.pkt.Opcode() {
				t.Fatalf("opcode mismatch: got %v want %v", decoded.Opcode(), c.pkt.Opcode())
			}

			switch want := c.pkt.(type) {
			case RRQ:
				got := decoded.(RRQ)
				if got != want {
					t.Fatalf("got %+v want %+v", got, want)
				}
			case WRQ:
				got := decoded.(WRQ)
				if got != want {
					t.Fatalf("got %+v want %+v", got, want)
				}
			case DATA:
				got := decoded.(DATA)
				if got.Block != want.Block || !bytes.Equal(got.Payload, want.Payload) {
					t.Fatalf("got %+v want %+v", got, want)
				}
			case ACK:
				got := decoded.(ACK)
				if got != want {
					t.Fatalf("got %+v want %+v", got, want)
				}
			case ERROR:
				got := decoded.(ERROR)
				if got != want {
					t.Fatalf("got %+v want %+v", got, want)
				}
			}
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"too short", []byte{0, 1}},
		{"unknown opcode", []byte{0, 9, 0, 0}},
		{"RRQ missing terminator", append([]byte{0, 1}, "file.txt"...)},
		{"RRQ missing mode", func() []byte {
			b := []byte{0, 1}
			b = append(b, "file.txt"...)
			b = append(b, 0)
			return b
		}()},
		{"ACK wrong length", []byte{0, 4, 0, 1, 0}},
		{"DATA oversize", append([]byte{0, 3, 0, 1}, bytes.Repeat([]byte{0}, BlockSize+1)...)},
		{"ERROR missing terminator", append([]byte{0, 5, 0, 1}, "oops"...)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Decode(c.b); err == nil {
				t.Fatalf("Decode(%v): expected error, got nil", c.b)
			}
		})
	}
}

func TestDecodeDataAllowsFinalShortBlock(t *testing.T) {
	pkt, err := Decode(DATA{Block: 3, Payload: []byte("x")}.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	data, ok := pkt.(DATA)
	if !ok {
		t.Fatalf("expected DATA, got %T", pkt)
	}
	if data.Block != 3 || string(data.Payload) != "x" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}
