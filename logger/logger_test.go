package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConcurrentFallback(t *testing.T) {
	mu.Lock()
	globalLogger = nil
	mu.Unlock()

	var wg sync.WaitGroup
	loggers := make([]interface{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loggers[i] = Get()
		}(i)
	}
	wg.Wait()

	for _, l := range loggers {
		require.NotNil(t, l)
		assert.Same(t, loggers[0], l)
	}
}

func TestInitSetsLevelAndEncoder(t *testing.T) {
	require.NoError(t, Init("debug", "development"))
	assert.NotNil(t, Get())

	require.NoError(t, Init("not-a-level", "production"))
	assert.NotNil(t, Get())
}
