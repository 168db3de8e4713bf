package aodv

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/loraaodv/node/atlink"
	"github.com/loraaodv/node/internal/address"
)

// sentFrame is one outbound unicast the simulated radio observed: a
// completed AT+DEST/AT+SEND dialogue.
type sentFrame struct {
	dest    address.Address
	payload []byte
}

// testRadio captures every AT+DEST/AT+SEND/<payload> dialogue the node
// under test issues, regardless of whether the destination was
// address.Broadcast, and ACKs each one immediately.
type testRadio struct {
	conn net.Conn
	sent chan sentFrame
}

// newTestLink opens a real *atlink.Link over a net.Pipe whose far end is
// driven by a scripted radio: it completes the AT+CFG/AT+ADDR handshake
// automatically, then ACKs every subsequent send dialogue immediately and
// reports the destination+payload on sent.
func newTestLink(t *testing.T, own address.Address) (*atlink.Link, *testRadio) {
	t.Helper()
	nodeSide, radioSide := net.Pipe()
	t.Cleanup(func() { nodeSide.Close(); radioSide.Close() })

	radio := &testRadio{conn: radioSide, sent: make(chan sentFrame, 64)}

	linkCh := make(chan *atlink.Link, 1)
	errCh := make(chan error, 1)
	go func() {
		link, err := atlink.Open(nodeSide, own, atlink.Config{}, nil)
		if err != nil {
			errCh <- err
			return
		}
		linkCh <- link
	}()

	go radio.run(t)

	select {
	case link := <-linkCh:
		return link, radio
	case err := <-errCh:
		t.Fatalf("opening link: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out opening link")
	}
	return nil, nil
}

func (r *testRadio) run(t *testing.T) {
	br := bufio.NewReader(r.conn)

	readLine := func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
	}

	if _, err := readLine(); err != nil { // AT+CFG=...
		return
	}
	r.conn.Write([]byte("AT,OK\r\n"))
	if _, err := readLine(); err != nil { // AT+ADDR=...
		return
	}
	r.conn.Write([]byte("AT,OK\r\n"))

	for {
		destLine, err := readLine()
		if err != nil {
			return
		}
		destStr, ok := strings.CutPrefix(destLine, "AT+DEST=")
		if !ok {
			return
		}
		dest := address.Broadcast
		if destStr != address.Broadcast.String() {
			var err error
			dest, err = address.Parse(destStr)
			if err != nil {
				return
			}
		}
		r.conn.Write([]byte("AT,OK\r\n"))

		sendLine, err := readLine()
		if err != nil {
			return
		}
		nStr, ok := strings.CutPrefix(sendLine, "AT+SEND=")
		if !ok {
			return
		}
		n, err := strconv.Atoi(nStr)
		if err != nil {
			return
		}
		r.conn.Write([]byte("AT,OK\r\n"))

		payload := make([]byte, n)
		if _, err := io.ReadFull(br, payload); err != nil {
			return
		}
		r.conn.Write([]byte("AT,SENDING\r\n"))
		r.conn.Write([]byte("AT,SENDED\r\n"))

		r.sent <- sentFrame{dest: dest, payload: payload}
	}
}

// inject writes an unsolicited LR frame as if sender had just transmitted
// to this node.
func (r *testRadio) inject(sender address.Address, payload []byte) {
	fmt.Fprintf(r.conn, "LR,%s,%02X,%s\r\n", sender, len(payload), payload)
}

// next blocks for the next captured sent frame, failing the test if none
// arrives within the timeout.
func (r *testRadio) next(t *testing.T) sentFrame {
	t.Helper()
	select {
	case f := <-r.sent:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a sent frame")
	}
	return sentFrame{}
}
