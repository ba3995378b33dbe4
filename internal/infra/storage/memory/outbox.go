package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "pucisca/internal/app/outbox"
)

const defaultOutboxCapacity = 1024

// Sink receives flushed records. It is where a process without a durable
// outbox sends its events: straight to the broker, or to the log.
type Sink interface {
	Deliver(ctx context.Context, records []appoutbox.EventRecord) error
}

type SinkFunc func(ctx context.Context, records []appoutbox.EventRecord) error

func (f SinkFunc) Deliver(ctx context.Context, records []appoutbox.EventRecord) error {
	return f(ctx, records)
}

// Outbox buffers records until Flush hands them to the sink. When the
// buffer is full the oldest record is dropped.
type Outbox struct {
	mu       sync.Mutex
	records  []appoutbox.EventRecord
	sink     Sink
	capacity int
	dropped  int
}

func NewOutbox(sink Sink, capacity int) *Outbox {
	if capacity <= 0 {
		capacity = defaultOutboxCapacity
	}
	return &Outbox{sink: sink, capacity: capacity}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.records) >= o.capacity {
		o.records = o.records[1:]
		o.dropped++
	}
	o.records = append(o.records, record)
	return nil
}

// Flush delivers everything buffered so far. Records a sink rejects are
// not retried.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.records
	o.records = nil
	o.mu.Unlock()

	if len(batch) == 0 || o.sink == nil {
		return nil
	}
	return o.sink.Deliver(ctx, batch)
}

// Pending reports buffered and dropped record counts.
func (o *Outbox) Pending() (buffered, dropped int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.records), o.dropped
}

// Formatter turns a record into a publishable message.
type Formatter interface {
	Format(rec appoutbox.EventRecord) ([]byte, map[string]string, error)
	TopicFor(name string) string
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// PublishSink sends every record to the broker right away.
func PublishSink(f Formatter, p Publisher) Sink {
	return SinkFunc(func(ctx context.Context, records []appoutbox.EventRecord) error {
		var errs []error
		for _, rec := range records {
			payload, headers, err := f.Format(rec)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := p.Publish(ctx, f.TopicFor(rec.Name), rec.Aggregate, payload, headers); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

var _ appoutbox.Outbox = (*Outbox)(nil)
