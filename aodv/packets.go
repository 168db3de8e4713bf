package aodv

import (
	"fmt"

	"github.com/loraaodv/node/internal/address"
	"github.com/loraaodv/node/internal/hexcodec"
)

// Packet type prefixes (spec.md §4.5).
const (
	prefixRREQ = '0'
	prefixRREP = '1'
	prefixRERR = '2'
	prefixDATA = '3'
)

// RouteRequest is the RREQ body.
type RouteRequest struct {
	DestinationSequenceUnknown bool
	HopCount                   uint8
	RequestID                  uint16
	Destination                address.Address
	DestinationSequence        uint16 // valid only if !DestinationSequenceUnknown
	Origin                     address.Address
	OriginSequence             uint16
}

// RouteReply is the RREP body. RequestOrigin is absent for a HELLO.
type RouteReply struct {
	HopCount                   uint8
	RequestDestination         address.Address
	RequestDestinationSequence uint16
	RequestOrigin              address.Address
	RequestOriginAbsent        bool
}

// RouteError is the RERR body, standardized on the minimal
// {destination}-only form (spec.md §9).
type RouteError struct {
	Destination address.Address
}

// Data is the application-data body.
type Data struct {
	Destination address.Address
	Origin      address.Address
	Payload     []byte
}

// Packet is a fully parsed AODV frame. Sender is the link-layer address
// C4 observed the frame arrive from, distinct from a body's logical
// end-to-end Origin.
type Packet struct {
	Sender address.Address
	Body   any // RouteRequest | RouteReply | RouteError | Data
}

// absentRequestOrigin is the FFFF-as-absent convention for RREP's
// request_origin field (spec.md §4.5).
var absentRequestOrigin = address.Broadcast

// EncodeRouteRequest renders an RREQ body as the ASCII payload carried
// inside an LR frame (24 bytes, including the leading type byte).
func EncodeRouteRequest(r RouteRequest) []byte {
	unknown := byte('N')
	if r.DestinationSequenceUnknown {
		unknown = 'Y'
	}

	out := make([]byte, 0, 24)
	out = append(out, prefixRREQ, unknown)
	out = append(out, hexcodec.EncodeUint8(r.HopCount)[:]...)
	out = append(out, hexcodec.EncodeUint16(r.RequestID)[:]...)
	out = append(out, r.Destination.Bytes()[:]...)
	out = append(out, hexcodec.EncodeUint16(r.DestinationSequence)[:]...)
	out = append(out, r.Origin.Bytes()[:]...)
	out = append(out, hexcodec.EncodeUint16(r.OriginSequence)[:]...)
	return out
}

// DecodeRouteRequest parses an RREQ body (without the leading type byte).
func DecodeRouteRequest(body []byte) (RouteRequest, error) {
	if len(body) != 23 {
		return RouteRequest{}, fmt.Errorf("%w: RREQ body has %d bytes, want 23", ErrInvalidData, len(body))
	}

	var r RouteRequest
	switch body[0] {
	case 'Y':
		r.DestinationSequenceUnknown = true
	case 'N':
		r.DestinationSequenceUnknown = false
	default:
		return RouteRequest{}, fmt.Errorf("%w: unexpected destination-sequence-unknown flag %q", ErrInvalidData, body[0])
	}

	hop, err := hexcodec.ParseUint8(body[1:3])
	if err != nil {
		return RouteRequest{}, err
	}
	r.HopCount = hop

	id, err := hexcodec.ParseUint16(body[3:7])
	if err != nil {
		return RouteRequest{}, err
	}
	r.RequestID = id

	dest, err := address.Parse(string(body[7:11]))
	if err != nil {
		return RouteRequest{}, err
	}
	r.Destination = dest

	destSeq, err := hexcodec.ParseUint16(body[11:15])
	if err != nil {
		return RouteRequest{}, err
	}
	r.DestinationSequence = destSeq

	origin, err := address.Parse(string(body[15:19]))
	if err != nil {
		return RouteRequest{}, err
	}
	r.Origin = origin

	originSeq, err := hexcodec.ParseUint16(body[19:23])
	if err != nil {
		return RouteRequest{}, err
	}
	r.OriginSequence = originSeq

	return r, nil
}

// EncodeRouteReply renders an RREP body (15 bytes, including the leading
// type byte).
func EncodeRouteReply(r RouteReply) []byte {
	origin := r.RequestOrigin
	if r.RequestOriginAbsent {
		origin = absentRequestOrigin
	}

	out := make([]byte, 0, 15)
	out = append(out, prefixRREP)
	out = append(out, hexcodec.EncodeUint8(r.HopCount)[:]...)
	out = append(out, r.RequestDestination.Bytes()[:]...)
	out = append(out, hexcodec.EncodeUint16(r.RequestDestinationSequence)[:]...)
	out = append(out, origin.Bytes()[:]...)
	return out
}

// DecodeRouteReply parses an RREP body (without the leading type byte).
func DecodeRouteReply(body []byte) (RouteReply, error) {
	if len(body) != 14 {
		return RouteReply{}, fmt.Errorf("%w: RREP body has %d bytes, want 14", ErrInvalidData, len(body))
	}

	var r RouteReply

	hop, err := hexcodec.ParseUint8(body[0:2])
	if err != nil {
		return RouteReply{}, err
	}
	r.HopCount = hop

	dest, err := address.Parse(string(body[2:6]))
	if err != nil {
		return RouteReply{}, err
	}
	r.RequestDestination = dest

	destSeq, err := hexcodec.ParseUint16(body[6:10])
	if err != nil {
		return RouteReply{}, err
	}
	r.RequestDestinationSequence = destSeq

	// The origin field uses FFFF-as-absent, which is itself the reserved
	// broadcast address, so it cannot be parsed through address.Parse
	// (which rejects FFFF). Compare the raw bytes against FFFF first and
	// parse only other values.
	rawOrigin := body[10:14]
	if string(rawOrigin) == string(absentRequestOrigin.Bytes()[:]) {
		r.RequestOriginAbsent = true
		return r, nil
	}
	origin, err := address.Parse(string(rawOrigin))
	if err != nil {
		return RouteReply{}, err
	}
	r.RequestOrigin = origin

	return r, nil
}

// EncodeRouteError renders a RERR body (5 bytes, including the leading
// type byte).
func EncodeRouteError(r RouteError) []byte {
	out := make([]byte, 0, 5)
	out = append(out, prefixRERR)
	out = append(out, r.Destination.Bytes()[:]...)
	return out
}

// DecodeRouteError parses a RERR body (without the leading type byte).
func DecodeRouteError(body []byte) (RouteError, error) {
	if len(body) != 4 {
		return RouteError{}, fmt.Errorf("%w: RERR body has %d bytes, want 4", ErrInvalidData, len(body))
	}
	dest, err := address.Parse(string(body))
	if err != nil {
		return RouteError{}, err
	}
	return RouteError{Destination: dest}, nil
}

// EncodeData renders a DATA body: type byte, destination, origin, then
// the raw payload verbatim.
func EncodeData(d Data) []byte {
	out := make([]byte, 0, 9+len(d.Payload))
	out = append(out, prefixDATA)
	out = append(out, d.Destination.Bytes()[:]...)
	out = append(out, d.Origin.Bytes()[:]...)
	out = append(out, d.Payload...)
	return out
}

// DecodeData parses a DATA body (without the leading type byte).
func DecodeData(body []byte) (Data, error) {
	if len(body) < 8 {
		return Data{}, fmt.Errorf("%w: DATA body has %d bytes, want at least 8", ErrInvalidData, len(body))
	}
	dest, err := address.Parse(string(body[0:4]))
	if err != nil {
		return Data{}, err
	}
	origin, err := address.Parse(string(body[4:8]))
	if err != nil {
		return Data{}, err
	}
	payload := append([]byte(nil), body[8:]...)
	return Data{Destination: dest, Origin: origin, Payload: payload}, nil
}

// DecodePacket parses the ASCII body of an LR frame into a Packet whose
// Sender is set to sender (the link-layer source C4 observed).
func DecodePacket(sender address.Address, body []byte) (Packet, error) {
	if len(body) == 0 {
		return Packet{}, fmt.Errorf("%w: empty packet body", ErrUnexpectedEOF)
	}

	switch body[0] {
	case prefixRREQ:
		r, err := DecodeRouteRequest(body[1:])
		if err != nil {
			return Packet{}, err
		}
		return Packet{Sender: sender, Body: r}, nil
	case prefixRREP:
		r, err := DecodeRouteReply(body[1:])
		if err != nil {
			return Packet{}, err
		}
		return Packet{Sender: sender, Body: r}, nil
	case prefixRERR:
		r, err := DecodeRouteError(body[1:])
		if err != nil {
			return Packet{}, err
		}
		return Packet{Sender: sender, Body: r}, nil
	case prefixDATA:
		d, err := DecodeData(body[1:])
		if err != nil {
			return Packet{}, err
		}
		return Packet{Sender: sender, Body: d}, nil
	default:
		return Packet{}, fmt.Errorf("%w: unknown packet prefix %q", ErrInvalidData, body[0])
	}
}
