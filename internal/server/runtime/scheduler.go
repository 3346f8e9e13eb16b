package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/message"
)

type eventKind int

const (
	eventMessage eventKind = iota
	eventTick
)

type event struct {
	kind eventKind
	msg  message.Message
}

// scheduler feeds one node from the input stream and the gossip ticker.
// Only the consumer goroutine touches node, ids and enc.
type scheduler struct {
	node     Node
	gossiper Gossiper
	sizer    StateSizer
	ids      *message.Sequence

	dec *message.Decoder
	reg *message.Registry
	enc *message.Encoder

	cfg     Config
	logger  *slog.Logger
	metrics Metrics
	limiter *rate.Limiter

	events chan event
}

func newScheduler(
	node Node,
	ids *message.Sequence,
	dec *message.Decoder,
	reg *message.Registry,
	enc *message.Encoder,
	cfg Config,
	logger *slog.Logger,
	metrics Metrics,
) *scheduler {
	s := &scheduler{
		node:    node,
		ids:     ids,
		dec:     dec,
		reg:     reg,
		enc:     enc,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		limiter: cfg.limiter(),
		events:  make(chan event, cfg.QueueCapacity),
	}
	s.gossiper, _ = node.(Gossiper)
	s.sizer, _ = node.(StateSizer)
	return s
}

func (s *scheduler) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reader is not part of the group: it may sit in a blocking Read
	// that only end of input can release.
	inputDone := make(chan struct{})
	var readErr error
	go func() {
		defer close(inputDone)
		readErr = s.readLoop(ctx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	if s.gossiper != nil {
		g.Go(func() error {
			s.tickLoop(gctx, inputDone)
			return nil
		})
	}
	g.Go(func() error {
		return s.consume(gctx, inputDone)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// consume only returns nil after inputDone is closed.
	if readErr != nil {
		s.logger.Error("input failed", "error", readErr)
		return readErr
	}
	s.logger.Info("input closed, node stopped")
	return nil
}

func (s *scheduler) readLoop(ctx context.Context) error {
	for {
		msg, err := s.dec.Decode(s.reg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		select {
		case s.events <- event{kind: eventMessage, msg: msg}:
			s.metrics.SetQueueDepth(len(s.events))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *scheduler) tickLoop(ctx context.Context, inputDone <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.GossipInterval)
	defer ticker.Stop()

	tick := event{kind: eventTick}
	for {
		select {
		case <-ctx.Done():
			return
		case <-inputDone:
			return
		case <-ticker.C:
		}

		s.metrics.RecordTick()
		if s.cfg.TickOverflow == OverflowBlock {
			select {
			case s.events <- tick:
			case <-ctx.Done():
				return
			case <-inputDone:
				return
			}
			continue
		}

		select {
		case s.events <- tick:
		default:
			s.metrics.RecordTickDropped()
			s.logger.Debug("event queue full, tick dropped", "capacity", cap(s.events))
		}
	}
}

func (s *scheduler) consume(ctx context.Context, inputDone <-chan struct{}) error {
	for {
		select {
		case ev := <-s.events:
			if err := s.dispatch(ev); err != nil {
				return err
			}
		case <-inputDone:
			return s.drain()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain processes whatever is still queued once input has ended.
func (s *scheduler) drain() error {
	for {
		select {
		case ev := <-s.events:
			if err := s.dispatch(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *scheduler) dispatch(ev event) error {
	s.metrics.SetQueueDepth(len(s.events))

	var err error
	switch ev.kind {
	case eventMessage:
		err = s.handle(ev.msg)
	case eventTick:
		err = s.gossip()
	}
	if err != nil {
		return err
	}

	if s.sizer != nil {
		s.metrics.SetStateSize(s.sizer.StateSize())
	}
	return nil
}

func (s *scheduler) handle(msg message.Message) error {
	typ := msg.Type()
	s.metrics.MessageReceived(typ)

	if e, ok := msg.Body.Payload.(message.Error); ok {
		s.logger.Warn("received error reply", "src", msg.Src, "code", e.Code, "text", e.Text)
	}

	start := time.Now()
	reply, err := s.node.Handle(msg)
	s.metrics.ObserveHandle(typ, time.Since(start))

	if err != nil {
		de, ok := domain.AsReportable(err)
		if !ok {
			return fmt.Errorf("handle %s from %s: %w", typ, msg.Src, err)
		}
		s.logger.Debug("request rejected", "type", typ, "src", msg.Src, "error", err)
		if msg.Body.ID == nil {
			return nil
		}
		r := msg.Reply(s.ids.Next(), message.Error{Code: de.RPCCode, Text: de.Error()})
		reply = &r
	}

	if reply == nil {
		return nil
	}
	return s.send(*reply)
}

func (s *scheduler) gossip() error {
	for _, m := range s.gossiper.Gossip() {
		if !s.limiter.Allow() {
			s.metrics.RecordGossipSuppressed()
			continue
		}
		if err := s.send(m); err != nil {
			return err
		}
		s.metrics.RecordGossipSent()
	}
	return nil
}

func (s *scheduler) send(m message.Message) error {
	if err := s.enc.Encode(m); err != nil {
		return err
	}
	s.metrics.MessageSent(m.Type())
	return nil
}
