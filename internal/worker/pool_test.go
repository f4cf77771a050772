package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitRunsTask(t *testing.T) {
	p, err := NewPool("test", 2)
	require.NoError(t, err)
	defer p.Release(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	require.NoError(t, p.Submit(func() {
		ran = true
		wg.Done()
	}))
	wg.Wait()
	assert.True(t, ran)
}

func TestPool_FullPoolRejects(t *testing.T) {
	p, err := NewPool("test", 1)
	require.NoError(t, err)

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-block
	}))
	<-started

	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolFull)

	close(block)
	p.Release(time.Second)
}
