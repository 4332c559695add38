package ping

import (
	"sync"
	"time"
)

// A request is a currently running ICMP echo request waiting for an answer.
type request struct {
	wait   chan struct{}
	once   sync.Once
	result error
	tStart time.Time
	tRecv  time.Time
}

func newRequest() *request {
	return &request{wait: make(chan struct{})}
}

// respond is responsible for finishing this request. It takes an error
// as failure reason. Only the first response counts.
func (req *request) respond(err error, tRecv time.Time) {
	req.once.Do(func() {
		req.result = err
		req.tRecv = tRecv
		close(req.wait)
	})
}
