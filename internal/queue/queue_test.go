package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_SendRecv(t *testing.T) {
	sender, receiver := New[int](4)

	sender.Send(1)
	sender.Send(2)

	v, ok := receiver.Recv()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = receiver.Recv()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueue_PreservesFIFOOrder(t *testing.T) {
	sender, receiver := New[string](8)

	for _, v := range []string{"a", "b", "c"} {
		sender.Send(v)
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok := receiver.Recv()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestQueue_CExposesReceiveChannel(t *testing.T) {
	sender, receiver := New[int](1)
	sender.Send(42)

	select {
	case v := <-receiver.C():
		assert.Equal(t, 42, v)
	default:
		t.Fatal("expected a buffered value on C()")
	}
}
