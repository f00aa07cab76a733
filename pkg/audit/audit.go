// Package audit records order-lifecycle events in a MongoDB collection.
//
// Writes never block the request path:
//
//   - Entries are enqueued into a buffered channel.
//   - A single background goroutine drains the channel and performs
//     InsertMany in batches.
//   - If the channel is full the entry is dropped; the order itself is
//     the source of truth, the trail is advisory.
//   - Call Close() on shutdown to flush what is queued.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	queueSize = 1024
	batchSize = 50
	drainTick = 2 * time.Second
)

// Entry is one audit record.
type Entry struct {
	Time    time.Time `bson:"time"`
	Action  string    `bson:"action"` // "order.created" | "order.status_changed" | "order.deleted"
	OrderID string    `bson:"order_id"`
	ActorID string    `bson:"actor_id,omitempty"` // empty for guest checkout
	Detail  bson.M    `bson:"detail,omitempty"`
}

// Trail is an asynchronous writer of Entry documents.
type Trail struct {
	col   *mongo.Collection
	queue chan Entry
	done  chan struct{}
}

// NewTrail starts a trail writing to the given collection.
// An index on time is created so the trail can be queried and expired.
func NewTrail(col *mongo.Collection) *Trail {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: -1}},
		Options: options.Index(),
	})

	t := &Trail{
		col:   col,
		queue: make(chan Entry, queueSize),
		done:  make(chan struct{}),
	}
	go t.drainLoop()
	return t
}

// Record enqueues an entry. Non-blocking; drops when the queue is full.
func (t *Trail) Record(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	select {
	case t.queue <- e:
	default:
	}
}

func (t *Trail) drainLoop() {
	ticker := time.NewTicker(drainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = t.col.InsertMany(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case e := <-t.queue:
			batch = append(batch, e)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-t.done:
			for len(t.queue) > 0 {
				batch = append(batch, <-t.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes pending entries. Safe to call multiple times.
func (t *Trail) Close() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}
