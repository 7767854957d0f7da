package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClient_FailsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePrefix(ctx, "resp:"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(ctx))
}

func TestUnreachableRedis_BehavesAsMiss(t *testing.T) {
	// Port 1 is never a redis server; every call must degrade to a miss.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.Get(ctx, "anything")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "anything", []byte("x"), time.Second))
	assert.NoError(t, c.DeletePrefix(ctx, "any"))
}
