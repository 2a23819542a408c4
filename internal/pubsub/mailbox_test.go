package pubsub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_DeliversValue(t *testing.T) {
	m := NewMailbox[int]()

	require.True(t, m.Put(1))
	assert.Equal(t, 1, <-m.C())
}

func TestMailbox_Conflates(t *testing.T) {
	m := NewMailbox[int]()

	for i := 1; i <= 5; i++ {
		require.True(t, m.Put(i))
	}

	assert.Equal(t, 5, <-m.C())
	select {
	case v := <-m.C():
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestMailbox_CloseDeliversPending(t *testing.T) {
	m := NewMailbox[string]()

	require.True(t, m.Put("last"))
	m.Close()
	m.Close()

	assert.False(t, m.Put("ignored"))

	v, ok := <-m.C()
	require.True(t, ok)
	assert.Equal(t, "last", v)

	_, ok = <-m.C()
	assert.False(t, ok)
}

func TestMailbox_ConcurrentPutsKeepLatest(t *testing.T) {
	m := NewMailbox[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			m.Put(v)
		}(i)
	}
	wg.Wait()

	// Exactly one value remains after all writers finish
	<-m.C()
	select {
	case <-m.C():
		t.Fatal("mailbox held more than one value")
	default:
	}
}
