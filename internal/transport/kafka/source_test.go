package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until the context ends.
type fakeReader struct {
	messages  []kafka.Message
	fetchErr  error
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.messages) == 0 {
		if f.fetchErr != nil {
			return kafka.Message{}, f.fetchErr
		}

		<-ctx.Done()

		return kafka.Message{}, ctx.Err()
	}

	msg := f.messages[0]
	f.messages = f.messages[1:]

	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}

	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true

	return nil
}

// TestNew_Validation checks required brokers and topics.
func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Topics: []string{"a"}})
	require.ErrorIs(t, err, errNoBrokers)

	_, err = New(Options{Brokers: []string{"localhost:9092"}})
	require.ErrorIs(t, err, errNoTopics)
}

// TestRun_HandlesAndCommitsInOrder verifies fetch, handle and commit sequencing.
func TestRun_HandlesAndCommitsInOrder(t *testing.T) {
	t.Parallel()

	fake := &fakeReader{messages: []kafka.Message{
		{Topic: "boiler", Value: []byte("20"), Offset: 1},
		{Topic: "boiler", Value: []byte("36"), Offset: 2},
		{Topic: "tank", Value: []byte("50"), Offset: 7},
	}}

	src, err := New(Options{Brokers: []string{"localhost:9092"}, Topics: []string{"boiler", "tank"}})
	require.NoError(t, err)

	src.newReader = func() reader { return fake }

	ctx, cancel := context.WithCancel(context.Background())

	var handled []string

	err = src.Run(ctx, func(_ context.Context, topic string, payload []byte) {
		handled = append(handled, topic+"="+string(payload))
		if len(handled) == 3 {
			cancel()
		}
	})
	require.NoError(t, err)
	require.Equal(t, []string{"boiler=20", "boiler=36", "tank=50"}, handled)
	require.Equal(t, []int64{1, 2, 7}, fake.committed)
	require.True(t, fake.closed)
}

// TestRun_FetchError surfaces reader failures.
func TestRun_FetchError(t *testing.T) {
	t.Parallel()

	fake := &fakeReader{fetchErr: errors.New("broker gone")}

	src, err := New(Options{Brokers: []string{"localhost:9092"}, Topics: []string{"a"}})
	require.NoError(t, err)

	src.newReader = func() reader { return fake }

	err = src.Run(context.Background(), func(context.Context, string, []byte) {})
	require.ErrorContains(t, err, "broker gone")
	require.True(t, fake.closed)
}
