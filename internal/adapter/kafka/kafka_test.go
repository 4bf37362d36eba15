package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	closed    bool
}

// FetchMessage hands out queued messages and then blocks until ctx is done.
func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		return msg, nil
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	written []kafkago.Message
	err     error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestMapMessageToRawSubmission(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("sub-1"),
		Value:     []byte(`{"id":"sub-1"}`),
		Topic:     "scenario-submissions",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "profile", Value: []byte("kopernikus")},
		},
	}

	raw := mapMessageToRawSubmission(msg)

	assert.Equal(t, []byte("sub-1"), raw.Key)
	assert.JSONEq(t, `{"id":"sub-1"}`, string(raw.Value))
	assert.Equal(t, "scenario-submissions", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "kopernikus", raw.Headers["profile"])
	assert.Nil(t, raw.Commit)
}

func TestReader_ExtractBatch(t *testing.T) {
	t.Run("stops at batch size", func(t *testing.T) {
		fake := &fakeReader{msgs: []kafkago.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
		r := &Reader{reader: fake, flushInterval: time.Second, logger: discardLogger()}

		batch, err := r.ExtractBatch(context.Background(), 2)

		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, int64(1), batch[0].Offset)
		assert.Equal(t, int64(2), batch[1].Offset)
		assert.Len(t, fake.msgs, 1)
	})

	t.Run("flushes partial batch after interval", func(t *testing.T) {
		fake := &fakeReader{msgs: []kafkago.Message{{Offset: 7}}}
		r := &Reader{reader: fake, flushInterval: 20 * time.Millisecond, logger: discardLogger()}

		batch, err := r.ExtractBatch(context.Background(), 50)

		require.NoError(t, err)
		assert.Len(t, batch, 1)
	})

	t.Run("returns error when nothing arrives", func(t *testing.T) {
		r := &Reader{reader: &fakeReader{}, flushInterval: time.Second, logger: discardLogger()}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := r.ExtractBatch(ctx, 10)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("commit acknowledges the message", func(t *testing.T) {
		fake := &fakeReader{msgs: []kafkago.Message{{Offset: 9}}}
		r := &Reader{reader: fake, flushInterval: 10 * time.Millisecond, logger: discardLogger()}

		batch, err := r.ExtractBatch(context.Background(), 1)
		require.NoError(t, err)
		require.NoError(t, batch[0].Commit(context.Background()))

		require.Len(t, fake.committed, 1)
		assert.Equal(t, int64(9), fake.committed[0].Offset)
	})
}

func TestReader_Close(t *testing.T) {
	fake := &fakeReader{}
	r := &Reader{reader: fake, logger: discardLogger()}

	require.NoError(t, r.Close())
	assert.True(t, fake.closed)
}

func TestWriter_LoadBatch(t *testing.T) {
	fake := &fakeWriter{}
	w := &Writer{writer: fake, logger: discardLogger()}
	events := []domain.OutputEvent{{
		Key:   []byte("sub-1"),
		Value: []byte(`{"status":"accepted"}`),
		Headers: map[string]string{
			"status":       "accepted",
			"profile":      "ariadne-intern",
			"processed_at": "2026-03-02T09:30:00Z",
		},
	}}

	require.NoError(t, w.LoadBatch(context.Background(), events))

	require.Len(t, fake.written, 1)
	msg := fake.written[0]
	assert.Equal(t, []byte("sub-1"), msg.Key)
	assert.Equal(t, []kafkago.Header{
		{Key: "processed_at", Value: []byte("2026-03-02T09:30:00Z")},
		{Key: "profile", Value: []byte("ariadne-intern")},
		{Key: "status", Value: []byte("accepted")},
	}, msg.Headers)
}

func TestWriter_LoadBatch_EmptyAndError(t *testing.T) {
	fake := &fakeWriter{err: errors.New("broker down")}
	w := &Writer{writer: fake, logger: discardLogger()}

	assert.NoError(t, w.LoadBatch(context.Background(), nil))
	assert.EqualError(t, w.LoadBatch(context.Background(), []domain.OutputEvent{{Key: []byte("k")}}), "broker down")
}
