package ping

import (
	"context"
	"crypto/rand"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"

	"pingtrend/internal/models"
)

var errTimeout = errors.New("no reply")

// ICMPPinger is an instance for ICMP echo requests. Replies are correlated with
// running requests by sequence number.
type ICMPPinger struct {
	conn    echoConn
	payload []byte

	sequence atomic.Uint32
	mtx      sync.Mutex
	requests map[uint16]*request
}

// NewICMP opens the sockets and starts the receiving logic. You'll need to
// call Close() to cleanup. An empty bind address disables that family.
func NewICMP(bind4, bind6 string, privileged bool, payloadSize uint16) (*ICMPPinger, error) {
	p := newICMPPinger(payloadSize)

	conn, err := openSocketConn(bind4, bind6, privileged, p.process)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newICMPPinger(payloadSize uint16) *ICMPPinger {
	payload := make([]byte, payloadSize)
	_, _ = rand.Read(payload)

	return &ICMPPinger{
		payload:  payload,
		requests: make(map[uint16]*request),
	}
}

// Close will close the ICMP sockets.
func (p *ICMPPinger) Close() error {
	return p.conn.Close()
}

// Probe resolves the target and sends a single echo request. Resolution
// and the wait for the reply share the timeout.
func (p *ICMPPinger) Probe(ctx context.Context, target models.Target, timeout time.Duration) models.Sample {
	sample := models.Sample{
		Time:    time.Now(),
		Target:  target.Name,
		Address: target.Address,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v4, v6 := p.conn.Families()
	addr, err := resolve(ctx, target.Address, v4, v6)
	if err != nil {
		sample.Status = models.StatusUnresolved
		sample.Error = err.Error()
		return sample
	}

	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	rtt, err := p.once(ctx, addr, timeout)
	if err != nil {
		sample.Status = models.StatusTimeout
		sample.Error = err.Error()
		return sample
	}

	sample.Status = models.StatusOK
	sample.RTT = rtt
	return sample
}

// once sends a single Echo Request and waits for an answer. It returns
// the round trip time (RTT) if a reply is received in time.
func (p *ICMPPinger) once(ctx context.Context, remote *net.IPAddr, timeout time.Duration) (time.Duration, error) {
	seq := uint16(p.sequence.Add(1))
	req := newRequest()

	p.mtx.Lock()
	p.requests[seq] = req
	p.mtx.Unlock()

	defer func() {
		p.mtx.Lock()
		delete(p.requests, seq)
		p.mtx.Unlock()
	}()

	// start measurement (tRecv is set in the receiving end)
	req.tStart = time.Now()

	if err := p.conn.WriteTo(remote, int(seq), p.payload); err != nil {
		return 0, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-req.wait:
		if req.result != nil {
			return 0, req.result
		}
		return req.tRecv.Sub(req.tStart), nil
	case <-timer.C:
		return 0, errTimeout
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, errTimeout
		}
		return 0, ctx.Err()
	}
}

// process finishes a currently running echo request if the body belongs to one.
func (p *ICMPPinger) process(body *icmp.Echo, icmpErr error, _ net.IPAddr, tRecv time.Time) {
	p.mtx.Lock()
	req := p.requests[uint16(body.Seq)]
	delete(p.requests, uint16(body.Seq))
	p.mtx.Unlock()

	if req != nil {
		req.respond(icmpErr, tRecv)
	}
}
