package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-evalstats/infrastructure/cache"
	"github.com/ahrav/go-evalstats/internal/application"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    []int64
		wantErr bool
	}{
		{name: "empty", list: "", want: nil},
		{name: "single", list: "7", want: []int64{7}},
		{name: "spaces and trailing comma", list: " 1, 2 ,3,", want: []int64{1, 2, 3}},
		{name: "not a number", list: "1,two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.list)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		c, closeCache, err := newCache(ctx, application.DefaultConfig().Cache)
		require.NoError(t, err)
		defer closeCache()
		assert.IsType(t, &cache.MemoryCache{}, c)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := application.DefaultConfig().Cache
		cfg.Backend = application.CacheBackendRedis
		cfg.Redis.Addr = mr.Addr()

		c, closeCache, err := newCache(ctx, cfg)
		require.NoError(t, err)
		defer closeCache()

		require.NoError(t, c.Set(ctx, "results-1", []byte("{}"), 0))
		assert.True(t, mr.Exists(redisPrefix+":results-1"))
	})
}
