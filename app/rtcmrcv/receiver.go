/*------------------------------------------------------------------------------
* receiver.go : rtcm 3 receiver
*
* notes  : one goroutine reads the input stream. every chunk is passed to the
*          frame parser, every frame is decoded and written to the sinks.
*          decode and sink errors are counted and traced, they never stop
*          the receiver.
*-----------------------------------------------------------------------------*/
package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"rtcmgo"
)

// Status is a snapshot of the receiver counters.
type Status struct {
	Session      string             `json:"session"`
	Input        string             `json:"input"`
	Parser       rtcmgo.ParserStats `json:"parser"`
	Buffered     int                `json:"buffered"`
	Messages     map[int]uint64     `json:"messages"`
	DecodeErrors uint64             `json:"decode_errors"`
	LastMessage  time.Time          `json:"last_message"`
}

type Receiver struct {
	parser   *rtcmgo.Parser
	metrics  *Metrics
	sinks    []Sink
	readSize int
	now      func() time.Time

	mu     sync.Mutex
	status Status
}

func NewReceiver(cfg Config, session string, metrics *Metrics, sinks ...Sink) *Receiver {
	return &Receiver{
		parser:   rtcmgo.NewParser(rtcmgo.WithMaxSize(cfg.MaxBuffer)),
		metrics:  metrics,
		sinks:    sinks,
		readSize: cfg.ReadSize,
		now:      time.Now,
		status: Status{
			Session:  session,
			Input:    cfg.Input,
			Messages: map[int]uint64{},
		},
	}
}

/* run receiver ----------------------------------------------------------------
* read the input stream until eof, read error or ctx is done
* args   : context.Context ctx  I   context
*          io.Reader in         I   input stream
* return : nil on eof, ctx.Err() on cancel, read error
* notes  : the reader goroutine exits once a pending read returns. the caller
*          closes in to release it on cancel.
*-----------------------------------------------------------------------------*/
func (r *Receiver) Run(ctx context.Context, in io.Reader) error {
	type chunk struct {
		data []byte
		err  error
	}
	ch := make(chan chunk)
	go func() {
		for {
			buff := make([]byte, r.readSize)
			n, err := in.Read(buff)
			select {
			case ch <- chunk{buff[:n], err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-ch:
			if len(c.data) > 0 {
				r.Input(c.data)
			}
			if errors.Is(c.err, io.EOF) {
				rtcmgo.Tracet(3, "receiver: end of stream\n")
				return nil
			}
			if c.err != nil {
				rtcmgo.Tracet(1, "receiver: read error: %v\n", c.err)
				return c.err
			}
		}
	}
}

// Input processes one chunk of stream data.
func (r *Receiver) Input(data []byte) {
	prev := r.parser.Stats()
	frames := r.parser.Parse(data)
	cur := r.parser.Stats()
	if r.metrics != nil {
		r.metrics.observeParser(prev, cur, r.parser.Buffered())
	}
	r.mu.Lock()
	r.status.Parser = cur
	r.status.Buffered = r.parser.Buffered()
	r.mu.Unlock()

	for _, frame := range frames {
		r.frame(frame)
	}
}

func (r *Receiver) frame(frame []byte) {
	t := r.now()
	msg, err := rtcmgo.DecodeFrame(frame)
	if err != nil {
		ctype, _ := rtcmgo.MessageNumber(rtcmgo.Payload(frame))
		rtcmgo.Tracet(2, "receiver: decode error: %v\n", err)
		if r.metrics != nil {
			r.metrics.DecodeErrors.WithLabelValues(typeLabel(ctype)).Inc()
		}
		r.mu.Lock()
		r.status.DecodeErrors++
		r.mu.Unlock()
		return
	}
	if r.metrics != nil {
		r.metrics.Messages.WithLabelValues(typeLabel(msg.MessageType())).Inc()
	}
	r.mu.Lock()
	r.status.Messages[msg.MessageType()]++
	r.status.LastMessage = t
	r.mu.Unlock()

	for _, s := range r.sinks {
		if err := s.Write(msg, t); err != nil {
			rtcmgo.Tracet(2, "receiver: %s write error: type=%d %v\n", s.Name(), msg.MessageType(), err)
			if r.metrics != nil {
				r.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			}
		}
	}
}

// Status returns a copy of the receiver counters.
func (r *Receiver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.status
	st.Messages = make(map[int]uint64, len(r.status.Messages))
	for k, v := range r.status.Messages {
		st.Messages[k] = v
	}
	return st
}

// Close closes all sinks and returns the first error.
func (r *Receiver) Close() error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
