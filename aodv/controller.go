package aodv

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/loraaodv/node/atlink"
	"github.com/loraaodv/node/internal/address"
)

// DataCallback is invoked for every DATA packet destined to this node,
// as (origin, payload). It is the only way received application data is
// delivered (spec.md §6).
type DataCallback func(origin address.Address, payload []byte)

// Controller runs the reactive routing protocol over a Link (spec.md
// C9). It owns the routing table, the pending-message buffer, the
// seen-requests set, and the two per-node sequence counters, and drives
// the inbound-handler and HELLO background tasks.
type Controller struct {
	link *atlink.Link

	table   *RoutingTable
	pending *pendingBuffer
	seen    *seenRequests
	seq     sequenceCounter
	reqID   requestIDCounter

	helloInterval time.Duration
	helloTimeout  time.Duration
	onData        DataCallback

	metrics *Metrics
	log     *logrus.Entry
}

// NewController builds a controller over link. helloTimeout should be at
// least 2×helloInterval (spec.md §4.7). constLabels is attached to every
// series the controller's Metrics collector exports; pass nil for none.
func NewController(link *atlink.Link, helloInterval, helloTimeout time.Duration, onData DataCallback, constLabels prometheus.Labels, log *logrus.Entry) *Controller {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	table := NewRoutingTable(link.Address())

	return &Controller{
		link:          link,
		table:         table,
		pending:       newPendingBuffer(),
		seen:          newSeenRequests(),
		helloInterval: helloInterval,
		helloTimeout:  helloTimeout,
		onData:        onData,
		metrics:       NewMetrics(table, constLabels),
		log:           log.WithField("component", "aodv"),
	}
}

// Metrics returns the controller's Prometheus collector, for
// registration with a prometheus.Registerer in cmd/meshnode.
func (c *Controller) Metrics() *Metrics { return c.metrics }

// Run starts the inbound-handler and HELLO background tasks and blocks
// until ctx is canceled. It does not interrupt an in-flight send
// dialogue (spec.md §5 still applies); it only stops the controller's
// own loops between iterations.
func (c *Controller) Run(ctx context.Context) {
	go c.runInbound(ctx)
	go c.runHello(ctx)
	<-ctx.Done()
}

// Table exposes the routing table for diagnostics (e.g. logging
// RoutingTable.String()) and for wiring into a Metrics collector.
func (c *Controller) Table() *RoutingTable { return c.table }

// Send is the application API (spec.md §4.7 "Send path"). If a live
// route to dest exists, the payload is wrapped in DATA and unicast
// immediately. Otherwise a RREQ is broadcast and the payload is buffered
// until a route appears.
func (c *Controller) Send(dest address.Address, payload []byte) error {
	if route, ok := c.table.GetRoute(dest); ok {
		data := Data{Destination: dest, Origin: c.link.Address(), Payload: payload}
		err := c.link.Send(route.NextHop, EncodeData(data))
		if err == nil {
			c.metrics.dataSent.Add(1)
		}
		return err
	}

	c.pending.push(dest, payload)

	req := RouteRequest{
		DestinationSequenceUnknown: true,
		HopCount:                   0,
		RequestID:                  c.reqID.next(),
		Destination:                dest,
		Origin:                     c.link.Address(),
		OriginSequence:             c.seq.next(),
	}
	err := c.link.Broadcast(EncodeRouteRequest(req))
	if err == nil {
		c.metrics.rreqSent.Add(1)
	}
	return err
}

func (c *Controller) runInbound(ctx context.Context) {
	inbound := c.link.Inbound()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			pkt, err := DecodePacket(msg.Address, msg.Data)
			if err != nil {
				c.log.WithError(err).Warn("dropping malformed packet")
				c.metrics.dropped.Add(1)
				continue
			}
			c.dispatch(pkt)
		}
	}
}

func (c *Controller) dispatch(pkt Packet) {
	switch body := pkt.Body.(type) {
	case RouteRequest:
		c.handleRouteRequest(pkt.Sender, body)
	case RouteReply:
		c.handleRouteReply(pkt.Sender, body)
	case RouteError:
		c.handleRouteError(pkt.Sender, body)
	case Data:
		c.handleData(body)
	default:
		c.log.Warn("dispatch: unrecognized packet body type")
	}
}

// handleRouteRequest implements spec.md §4.7 "RREQ handling".
func (c *Controller) handleRouteRequest(sender address.Address, p RouteRequest) {
	own := c.link.Address()
	if p.Origin == own {
		return
	}
	if c.seen.observe(p.Origin, p.RequestID) {
		c.metrics.dropped.Add(1)
		return
	}

	c.seq.observe(p.OriginSequence)

	if route, changed := c.table.AddRoute(p.Origin, p.OriginSequence, sender, p.HopCount+1); changed {
		c.drainPending(p.Origin, route)
	}

	if p.Destination == own {
		rep := RouteReply{
			HopCount:                   0,
			RequestDestination:         p.Destination,
			RequestDestinationSequence: c.seq.next(),
			RequestOrigin:              p.Origin,
		}
		c.replyOrLog(sender, rep)
		return
	}

	known, ok := c.table.GetRoute(p.Destination)
	if ok && (p.DestinationSequenceUnknown || !newer(p.DestinationSequence, known.DestinationSequence)) {
		rep := RouteReply{
			HopCount:                   known.HopCount,
			RequestDestination:         p.Destination,
			RequestDestinationSequence: known.DestinationSequence,
			RequestOrigin:              p.Origin,
		}
		c.replyOrLog(sender, rep)
		return
	}

	fwd := p
	fwd.HopCount++
	if err := c.link.Broadcast(EncodeRouteRequest(fwd)); err != nil {
		c.log.WithError(err).Warn("failed to rebroadcast RREQ")
		return
	}
	c.metrics.rreqForwarded.Add(1)
}

func (c *Controller) replyOrLog(to address.Address, rep RouteReply) {
	if err := c.link.Send(to, EncodeRouteReply(rep)); err != nil {
		c.log.WithError(err).Warn("failed to send RREP")
		return
	}
	c.metrics.rrepSent.Add(1)
}

// handleRouteReply implements spec.md §4.7 "RREP handling".
func (c *Controller) handleRouteReply(sender address.Address, p RouteReply) {
	c.seq.observe(p.RequestDestinationSequence)

	if route, changed := c.table.AddRoute(p.RequestDestination, p.RequestDestinationSequence, sender, p.HopCount+1); changed {
		c.drainPending(p.RequestDestination, route)
	}

	if p.RequestOriginAbsent {
		return
	}
	if p.RequestOrigin == c.link.Address() {
		return
	}

	originRoute, ok := c.table.GetRoute(p.RequestOrigin)
	if !ok {
		c.broadcastRouteError(p.RequestOrigin)
		return
	}

	fwd := p
	fwd.HopCount++
	if err := c.link.Send(originRoute.NextHop, EncodeRouteReply(fwd)); err != nil {
		c.log.WithError(err).Warn("failed to forward RREP")
		return
	}
	c.metrics.rrepForwarded.Add(1)
}

// handleRouteError implements spec.md §4.7 "RERR handling".
func (c *Controller) handleRouteError(sender address.Address, p RouteError) {
	if !c.table.RemoveRoute(p.Destination, sender) {
		c.metrics.dropped.Add(1)
		return
	}
	if err := c.link.Broadcast(EncodeRouteError(p)); err != nil {
		c.log.WithError(err).Warn("failed to rebroadcast RERR")
		return
	}
	c.metrics.rerrSent.Add(1)
}

// handleData implements spec.md §4.7 "DATA handling".
func (c *Controller) handleData(p Data) {
	if p.Destination == c.link.Address() {
		if c.onData != nil {
			c.onData(p.Origin, p.Payload)
		}
		return
	}

	route, ok := c.table.GetRoute(p.Destination)
	if !ok {
		c.broadcastRouteError(p.Destination)
		c.metrics.dropped.Add(1)
		return
	}
	if err := c.link.Send(route.NextHop, EncodeData(p)); err != nil {
		c.log.WithError(err).Warn("failed to forward DATA")
		return
	}
	c.metrics.dataForwarded.Add(1)
}

func (c *Controller) broadcastRouteError(dest address.Address) {
	if err := c.link.Broadcast(EncodeRouteError(RouteError{Destination: dest})); err != nil {
		c.log.WithError(err).Warn("failed to broadcast RERR")
		return
	}
	c.metrics.rerrSent.Add(1)
}

// drainPending flushes every payload queued for dest once route becomes
// the live route, sending each as a DATA packet to route.NextHop.
func (c *Controller) drainPending(dest address.Address, route RouteEntry) {
	for _, payload := range c.pending.drain(dest) {
		data := Data{Destination: dest, Origin: c.link.Address(), Payload: payload}
		if err := c.link.Send(route.NextHop, EncodeData(data)); err != nil {
			c.log.WithError(err).Warn("failed to flush pending payload")
			continue
		}
		c.metrics.dataSent.Add(1)
	}
}

func (c *Controller) runHello(ctx context.Context) {
	ticker := time.NewTicker(c.helloInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sendHello()
			c.expireNeighbors()
			c.metrics.helloTicks.Add(1)
		}
	}
}

// sendHello broadcasts a RREP with no request_origin, per spec.md §4.7
// "HELLO and expiry".
func (c *Controller) sendHello() {
	rep := RouteReply{
		HopCount:                   0,
		RequestDestination:         c.link.Address(),
		RequestDestinationSequence: c.seq.next(),
		RequestOriginAbsent:        true,
	}
	if err := c.link.Broadcast(EncodeRouteReply(rep)); err != nil {
		c.log.WithError(err).Warn("failed to broadcast HELLO")
		return
	}
	c.metrics.rrepSent.Add(1)
}

// expireNeighbors invalidates every route depending on a neighbor not
// heard from within helloTimeout, broadcasting one RERR per destination.
func (c *Controller) expireNeighbors() {
	now := time.Now()
	for neighbor, route := range c.table.Neighbors() {
		if now.Sub(route.LastSeen) <= c.helloTimeout {
			continue
		}
		for dest := range c.table.RoutesWithNextHop(neighbor) {
			if c.table.RemoveRoute(dest, neighbor) {
				c.broadcastRouteError(dest)
			}
		}
	}
}
