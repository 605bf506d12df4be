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
	"go.uber.org/zap"
)

// fakeReader serves a fixed list of messages, then blocks until ctx is done.
// Commits are cumulative per partition, as on a real consumer group: the
// group offset becomes the committed message's offset + 1.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	fetchErr  error
	committed []int64
	groupOff  map[int]int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	err := f.fetchErr
	f.mu.Unlock()
	if err != nil {
		return kafka.Message{}, err
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupOff == nil {
		f.groupOff = map[int]int64{}
	}
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
		f.groupOff[m.Partition] = m.Offset + 1
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) commits() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...)
}

func (f *fakeReader) groupOffset(partition int) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupOff[partition]
}

func newTestConsumer(r reader, workers int) *Consumer {
	c := newConsumer(r, workers, zap.NewNop())
	c.minBackoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond
	return c
}

func TestConsumer_RetriesFailedMessageBeforeCommitting(t *testing.T) {
	t.Parallel()

	r := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("flaky")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := newTestConsumer(r, 1)

	ctx, cancel := context.WithCancel(context.Background())
	var handled []int64
	flakyFailures := 2
	err := c.Start(ctx, func(_ context.Context, m kafka.Message) error {
		handled = append(handled, m.Offset)
		if string(m.Value) == "flaky" && flakyFailures > 0 {
			flakyFailures--
			return errors.New("rate limited")
		}
		if m.Offset == 3 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 2, 2, 3}, handled)
	assert.Equal(t, []int64{1, 2, 3}, r.commits())
	assert.Equal(t, int64(4), r.groupOffset(0))
	assert.True(t, r.closed)
}

func TestConsumer_CancelDuringRetryLeavesOffsetUncommitted(t *testing.T) {
	t.Parallel()

	r := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("fail")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := newTestConsumer(r, 1)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	attempts := map[int64]int{}
	err := c.Start(ctx, func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[m.Offset]++
		if string(m.Value) == "fail" {
			if attempts[m.Offset] == 3 {
				cancel()
			}
			return errors.New("transport down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1}, r.commits())
	// the group resumes at the failed message
	assert.Equal(t, int64(2), r.groupOffset(0))
	assert.Zero(t, attempts[3])
}

func TestConsumer_PartitionOrderAcrossWorkers(t *testing.T) {
	t.Parallel()

	var msgs []kafka.Message
	for off := int64(0); off < 20; off++ {
		msgs = append(msgs, kafka.Message{Partition: int(off % 3), Offset: off})
	}
	r := &fakeReader{msgs: msgs}
	c := newTestConsumer(r, 4)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	seen := map[int][]int64{}
	total := 0
	err := c.Start(ctx, func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen[m.Partition] = append(seen[m.Partition], m.Offset)
		if total++; total == len(msgs) {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	for p, offsets := range seen {
		assert.IsIncreasing(t, offsets, "partition %d", p)
	}
}

func TestConsumer_FetchErrorStops(t *testing.T) {
	t.Parallel()

	r := &fakeReader{fetchErr: errors.New("broker gone")}
	c := newTestConsumer(r, 4)

	err := c.Start(context.Background(), func(context.Context, kafka.Message) error { return nil })

	require.EqualError(t, err, "broker gone")
	assert.True(t, r.closed)
}

func TestNewConsumer_DefaultsWorkers(t *testing.T) {
	t.Parallel()

	c := newConsumer(&fakeReader{}, 0, zap.NewNop())
	assert.Equal(t, 1, c.workers)
}

func TestUnwrapPayload(t *testing.T) {
	t.Parallel()

	type payload struct {
		Recipient string `json:"recipient"`
	}

	got, err := UnwrapPayload[payload](MustMarshal(payload{Recipient: "a@x.com"}))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Recipient)

	_, err = UnwrapPayload[payload]([]byte("{"))
	assert.Error(t, err)
}
