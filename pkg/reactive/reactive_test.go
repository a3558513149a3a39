package reactive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValueSubscribeYieldsCurrentThenLatest(t *testing.T) {
	v := NewValue(1)
	ch, cancel := v.Subscribe()
	defer cancel()

	assert.Equal(t, 1, recv(t, ch))

	v.Set(2)
	v.Set(3)
	// The slow subscriber only sees the latest value.
	assert.Equal(t, 3, recv(t, ch))
	assert.Equal(t, 3, v.Get())
}

func TestValueUpdate(t *testing.T) {
	v := NewValue("a")
	got := v.Update(func(s string) string { return s + "b" })
	assert.Equal(t, "ab", got)
	assert.Equal(t, "ab", v.Get())
}

func TestValueCancelClosesChannel(t *testing.T) {
	v := NewValue(0)
	ch, cancel := v.Subscribe()
	<-ch
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	v.Set(1) // no subscribers left, must not block
}

func TestWatchRequeriesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 1)
	n := 0
	released := make(chan struct{})
	out := Watch(ctx, changes, func(context.Context) (int, error) {
		n++
		return n, nil
	}, func() { close(released) })

	assert.Equal(t, 1, recv(t, out).Value)
	changes <- struct{}{}
	assert.Equal(t, 2, recv(t, out).Value)

	cancel()
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("release not called")
	}
}

func TestWatchStopsAfterError(t *testing.T) {
	boom := errors.New("boom")
	changes := make(chan struct{})
	out := Watch(context.Background(), changes, func(context.Context) (int, error) {
		return 0, boom
	}, nil)

	it := recv(t, out)
	assert.ErrorIs(t, it.Err, boom)

	_, ok := <-out
	assert.False(t, ok)
}

func TestMap(t *testing.T) {
	ctx := context.Background()
	in := make(chan Item[int], 2)
	in <- Item[int]{Value: 2}
	in <- Item[int]{Err: errors.New("x")}
	close(in)

	out := Map(ctx, in, func(v int) string { return string(rune('a' + v)) })
	assert.Equal(t, "c", recv(t, out).Value)
	assert.Error(t, recv(t, out).Err)
	_, ok := <-out
	assert.False(t, ok)
}
