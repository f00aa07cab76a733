package queue

import "context"

// MemoryDriver is the default in-process queue, backed by a buffered channel.
// Jobs do not survive a restart. Use the Redis driver in production.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates an in-memory driver with a 1024 job buffer.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1024)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}
