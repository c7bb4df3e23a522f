package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := newQueue(4)

	assert.Equal(t, 3, q.push([]byte{1, 2, 3}))
	assert.Equal(t, 3, q.len())

	p := make([]byte, 2)
	n, err := q.pop(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, p[:n])

	n, err = q.pop(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, p[:n])

	n, err = q.pop(p)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueue_Full(t *testing.T) {
	q := newQueue(4)

	assert.Equal(t, 4, q.push([]byte{1, 2, 3, 4, 5, 6}))

	p := make([]byte, 8)
	_, err := q.pop(p)
	assert.ErrorIs(t, err, ErrBufferFull)

	// The error is reported once; buffered bytes remain until flushed.
	n, err := q.pop(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, p[:n])
}

func TestQueue_Reset(t *testing.T) {
	q := newQueue(2)
	q.push([]byte{1, 2, 3})
	q.reset()

	n, err := q.pop(make([]byte, 4))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, q.len())
}
