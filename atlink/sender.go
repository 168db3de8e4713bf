package atlink

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/loraaodv/node/internal/address"
)

// sendJob is one request to the command sender: transmit data to
// destination, report the dialogue's outcome on result.
type sendJob struct {
	destination address.Address
	data        []byte
	result      chan<- error
}

// sender owns the serial writer and the consumer side of the reply queue.
// It is the only task that writes to the port; the demultiplexer (C4) is
// the only task that reads from it. This separation is what lets the send
// dialogue interleave with inbound LR frames without a cross-handle lock
// (spec §4.3, §9).
type sender struct {
	w        io.Writer
	replies  <-chan Reply
	requests <-chan sendJob
	log      *logrus.Entry
}

func newSender(w io.Writer, replies <-chan Reply, requests <-chan sendJob, log *logrus.Entry) *sender {
	return &sender{w: w, replies: replies, requests: requests, log: log.WithField("component", "sender")}
}

// run drains requests until the channel is closed, reporting each
// dialogue's outcome before moving to the next.
func (s *sender) run() {
	for job := range s.requests {
		err := s.sendOne(job.destination, job.data)
		job.result <- err
	}
}

// sendOne performs the four-step send dialogue described in spec §4.3.
func (s *sender) sendOne(destination address.Address, data []byte) error {
	if err := s.writeLine("AT+DEST=%s", destination); err != nil {
		return err
	}
	if err := s.expect("OK"); err != nil {
		return err
	}

	if err := s.writeLine("AT+SEND=%d", len(data)); err != nil {
		return err
	}
	if err := s.expect("OK"); err != nil {
		return err
	}

	if _, err := s.w.Write(data); err != nil {
		return err
	}

	if err := s.expect("SENDING"); err != nil {
		return err
	}
	if err := s.expect("SENDED"); err != nil {
		return err
	}
	return nil
}

func (s *sender) writeLine(format string, args ...any) error {
	_, err := fmt.Fprintf(s.w, format+"\r\n", args...)
	return err
}

// expect reads the next reply off the queue and fails with ErrProtocol if
// it doesn't match want exactly.
func (s *sender) expect(want string) error {
	reply, ok := <-s.replies
	if !ok {
		return ErrUnexpectedEOF
	}
	if reply.String() != want {
		return fmt.Errorf("%w: got %q, want %q", ErrProtocol, reply.String(), want)
	}
	return nil
}
