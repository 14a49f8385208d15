package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/record"
)

// fakeReader serves msgs in order and then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	next      int
	committed []int64
	closed    bool
	commitErr error
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.next < len(r.msgs) {
		m := r.msgs[r.next]
		r.next++
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// fakeDecoder accepts values starting with 'o' and rejects the rest. Values
// starting with 's' are slow so parallel decodes finish out of order.
type fakeDecoder struct {
	mu      sync.Mutex
	traceID []string
}

var errRejected = errors.New("rejected")

func (d *fakeDecoder) Decode(ctx context.Context, buf []byte) (record.Record, error) {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		d.mu.Lock()
		d.traceID = append(d.traceID, v)
		d.mu.Unlock()
	}
	switch {
	case len(buf) > 0 && buf[0] == 's':
		time.Sleep(20 * time.Millisecond)
		return record.Record{"value": string(buf)}, nil
	case len(buf) > 0 && buf[0] == 'o':
		return record.Record{"value": string(buf)}, nil
	default:
		return nil, errRejected
	}
}

type traceKey struct{}

type fakePropagator struct{}

func (fakePropagator) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return context.WithValue(ctx, traceKey{}, carrier["traceparent"])
}

func messages(values ...string) []kafka.Message {
	msgs := make([]kafka.Message, len(values))
	for i, v := range values {
		msgs[i] = kafka.Message{Topic: "events", Partition: 0, Offset: int64(i), Value: []byte(v)}
	}
	return msgs
}

// runUntil runs the consumer until n messages are committed or the handler fails.
func runUntil(t *testing.T, c *Consumer, r *fakeReader, n int, handler Handler) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, handler) }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("consumer did not finish")
		case <-time.After(5 * time.Millisecond):
			if len(r.commits()) >= n {
				cancel()
				return <-done
			}
		}
	}
}

func TestRun_HandlesAndCommitsInOrder(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run("workers", func(t *testing.T) {
			r := &fakeReader{msgs: messages("s1", "o2", "bad", "s4", "o5")}
			c := newConsumer(Config{Topic: "events", Workers: workers}, r, &fakeDecoder{}, logger.NewNop())

			var got []string
			err := runUntil(t, c, r, 5, func(_ context.Context, _ kafka.Message, rec record.Record) error {
				got = append(got, rec["value"].(string))
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, []string{"s1", "o2", "s4", "o5"}, got)
			assert.Equal(t, []int64{0, 1, 2, 3, 4}, r.commits())
		})
	}
}

func TestRun_HandlerErrorStops(t *testing.T) {
	r := &fakeReader{msgs: messages("o1", "o2", "o3")}
	c := newConsumer(Config{Topic: "events"}, r, &fakeDecoder{}, logger.NewNop())

	boom := errors.New("sink down")
	err := runUntil(t, c, r, 3, func(_ context.Context, msg kafka.Message, _ record.Record) error {
		if msg.Offset == 1 {
			return boom
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{0}, r.commits())
}

func TestRun_CommitErrorStops(t *testing.T) {
	r := &fakeReader{msgs: messages("o1"), commitErr: errors.New("coordinator gone")}
	c := newConsumer(Config{Topic: "events"}, r, &fakeDecoder{}, logger.NewNop())

	err := runUntil(t, c, r, 1, func(context.Context, kafka.Message, record.Record) error { return nil })
	assert.ErrorContains(t, err, "failed to commit")
}

func TestRun_CancelReturnsNil(t *testing.T) {
	r := &fakeReader{}
	c := newConsumer(Config{Topic: "events"}, r, &fakeDecoder{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, c.Close())
	assert.True(t, r.closed)
}

func TestRun_PropagatesTraceHeaders(t *testing.T) {
	msgs := messages("o1")
	msgs[0].Headers = []kafka.Header{{Key: "traceparent", Value: []byte("00-abc-def-01")}}
	r := &fakeReader{msgs: msgs}
	dec := &fakeDecoder{}
	c := newConsumer(Config{Topic: "events"}, r, dec, logger.NewNop()).WithPropagator(fakePropagator{})

	err := runUntil(t, c, r, 1, func(context.Context, kafka.Message, record.Record) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"00-abc-def-01"}, dec.traceID)
}

func TestNewConsumer_Validation(t *testing.T) {
	log := logger.NewNop()

	_, err := NewConsumer(Config{Topic: "t", GroupID: "g"}, &fakeDecoder{}, log)
	assert.ErrorContains(t, err, "broker")

	_, err = NewConsumer(Config{Brokers: []string{"b:9092"}, GroupID: "g"}, &fakeDecoder{}, log)
	assert.ErrorContains(t, err, "topic")

	_, err = NewConsumer(Config{Brokers: []string{"b:9092"}, Topic: "t"}, &fakeDecoder{}, log)
	assert.ErrorContains(t, err, "group id")

	_, err = NewConsumer(Config{
		Brokers: []string{"b:9092"}, Topic: "t", GroupID: "g",
		SASL: SASLConfig{Enabled: true, Mechanism: "GSSAPI"},
	}, &fakeDecoder{}, log)
	assert.ErrorContains(t, err, "unsupported SASL mechanism")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultMinBytes, cfg.MinBytes)
	assert.Equal(t, int(DefaultMaxBytes), cfg.MaxBytes)
	assert.Equal(t, DefaultMaxWait, cfg.MaxWait)
	assert.Equal(t, DefaultCommitInterval, cfg.CommitInterval)
	assert.Equal(t, int64(kafka.FirstOffset), cfg.StartOffset)
	assert.Equal(t, 1, cfg.Workers)
}

func TestCreateSASLMechanism(t *testing.T) {
	for _, name := range []string{"PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"} {
		m, err := createSASLMechanism(SASLConfig{Mechanism: name, Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
	}
}

func TestCreateTLSConfig(t *testing.T) {
	cfg, err := createTLSConfig(TLSConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)

	_, err = createTLSConfig(TLSConfig{CACertPath: "/nonexistent/ca.pem"})
	assert.ErrorContains(t, err, "failed to read CA cert")
}
