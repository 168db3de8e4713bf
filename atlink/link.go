// Package atlink implements the AT-command serial link driver: the framed
// reader (C3), the reply/message demultiplexer (C4), the command sender
// (C5), and the facade (C6) that the AODV controller builds on.
package atlink

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/loraaodv/node/internal/address"
)

const (
	replyQueueDepth   = 16
	inboundQueueDepth = 256
)

// Link is the public facade over the AT-command serial link (spec §4.4). It
// owns the writer half of the connection (indirectly, via the sender task)
// and exposes a FIFO of inbound messages observed from the radio.
type Link struct {
	address  address.Address
	requests chan<- sendJob
	inbound  <-chan Message
}

// Open performs the C6 builder dialogue over port: configure the radio,
// set its own address, then hand the writer to the command sender. port
// must support concurrent Read (by the demultiplexer) and Write (by Open
// itself, then by the sender); a *tarm/serial.Port satisfies this.
func Open(port io.ReadWriter, own address.Address, cfg Config, log *logrus.Entry) (*Link, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	fr := NewFramedReader(port)
	replies := make(chan Reply, replyQueueDepth)
	inbound := make(chan Message, inboundQueueDepth)

	d := newDemux(fr, replies, inbound, log)
	go d.run()

	if err := writeLine(port, "AT+CFG=%s", cfg); err != nil {
		return nil, fmt.Errorf("atlink: writing AT+CFG: %w", err)
	}
	if err := expectOK(replies); err != nil {
		return nil, fmt.Errorf("atlink: configuring radio: %w", err)
	}

	if err := writeLine(port, "AT+ADDR=%s", own); err != nil {
		return nil, fmt.Errorf("atlink: writing AT+ADDR: %w", err)
	}
	if err := expectOK(replies); err != nil {
		return nil, fmt.Errorf("atlink: setting address: %w", err)
	}

	requests := make(chan sendJob)
	snd := newSender(port, replies, requests, log)
	go snd.run()

	log.WithFields(logrus.Fields{"address": own.String()}).Info("AT link opened")

	return &Link{address: own, requests: requests, inbound: inbound}, nil
}

func writeLine(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format+"\r\n", args...)
	return err
}

func expectOK(replies <-chan Reply) error {
	reply, ok := <-replies
	if !ok {
		return ErrUnexpectedEOF
	}
	if reply.String() != "OK" {
		return fmt.Errorf("%w: got %q, want \"OK\"", ErrProtocol, reply.String())
	}
	return nil
}

// Address returns this node's own link-layer address.
func (l *Link) Address() address.Address { return l.address }

// Send transmits data to destination. If destination is address.Broadcast,
// the radio broadcasts to every neighbor in range.
func (l *Link) Send(destination address.Address, data []byte) error {
	result := make(chan error, 1)
	l.requests <- sendJob{destination: destination, data: data, result: result}
	return <-result
}

// Broadcast is equivalent to Send(address.Broadcast, data).
func (l *Link) Broadcast(data []byte) error {
	return l.Send(address.Broadcast, data)
}

// Inbound returns the FIFO stream of frames received from the radio, in
// the exact order they appeared on the wire.
func (l *Link) Inbound() <-chan Message {
	return l.inbound
}
