package atlink

import (
	"github.com/sirupsen/logrus"

	"github.com/loraaodv/node/internal/address"
	"github.com/loraaodv/node/internal/hexcodec"
)

// Reply is a single "AT,..." command reply frame, CRLF already stripped.
type Reply struct {
	Data []byte
}

func (r Reply) String() string { return string(r.Data) }

// Message is a single unsolicited "LR,..." inbound frame from another node.
type Message struct {
	Address address.Address
	Data    []byte
}

// demux consumes fr and classifies every frame as a command reply or an
// inbound message (spec §4.2), one task, one reader. It is the sole
// consumer of the serial port's read half; the command sender (C5) never
// reads from the port directly.
type demux struct {
	fr      *FramedReader
	replies chan<- Reply
	inbound chan<- Message
	log     *logrus.Entry
}

func newDemux(fr *FramedReader, replies chan<- Reply, inbound chan<- Message, log *logrus.Entry) *demux {
	return &demux{fr: fr, replies: replies, inbound: inbound, log: log.WithField("component", "demux")}
}

// run loops until a terminal I/O error occurs on the underlying reader.
// Malformed frames are logged and skipped; they never end the loop, per
// spec §7's "per-message failures never tear down background tasks".
func (d *demux) run() {
	defer close(d.replies)
	defer close(d.inbound)
	for {
		prefix, err := d.fr.ReadBytes(3)
		if err != nil {
			d.log.WithError(err).Warn("link read failed, demultiplexer stopping")
			return
		}

		switch string(prefix) {
		case "AT,":
			if err := d.readReply(); err != nil {
				if isTerminal(err) {
					d.log.WithError(err).Warn("link read failed, demultiplexer stopping")
					return
				}
				d.log.WithError(err).Warn("malformed AT, frame, resyncing")
			}
		case "LR,":
			if err := d.readMessage(); err != nil {
				if isTerminal(err) {
					d.log.WithError(err).Warn("link read failed, demultiplexer stopping")
					return
				}
				d.log.WithError(err).Warn("malformed LR, frame, resyncing")
			}
		default:
			d.log.WithField("prefix", string(prefix)).Warn("unrecognized frame prefix, resyncing")
		}
	}
}

// isTerminal distinguishes an underlying I/O failure (task-terminal,
// including the link closing mid-frame) from a framing-level ErrInvalidData
// that only means "resync at the next 3 bytes".
func isTerminal(err error) bool {
	return err != ErrInvalidData
}

func (d *demux) readReply() error {
	line, err := d.fr.ReadUntil('\n')
	if err != nil {
		return err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return ErrInvalidData
	}
	data := make([]byte, len(line)-2)
	copy(data, line[:len(line)-2])
	d.replies <- Reply{Data: data}
	return nil
}

func (d *demux) readMessage() error {
	header, err := d.fr.ReadBytes(8)
	if err != nil {
		return err
	}
	if header[4] != ',' || header[7] != ',' {
		return ErrInvalidData
	}
	addr, err := address.New([4]byte{header[0], header[1], header[2], header[3]})
	if err != nil {
		return ErrInvalidData
	}
	length, err := hexcodec.ParseUint8(header[5:7])
	if err != nil {
		return ErrInvalidData
	}

	body, err := d.fr.ReadBytes(int(length) + 2)
	if err != nil {
		return err
	}
	if body[len(body)-2] != '\r' || body[len(body)-1] != '\n' {
		return ErrInvalidData
	}

	data := make([]byte, length)
	copy(data, body[:length])
	d.inbound <- Message{Address: addr, Data: data}
	return nil
}
