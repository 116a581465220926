package glgpu

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/engine/gpu"
)

// errorQueue stands in for the GL error queue.
type errorQueue struct{ codes []uint32 }

func (q *errorQueue) push(codes ...uint32) { q.codes = append(q.codes, codes...) }

func (q *errorQueue) next() uint32 {
	if len(q.codes) == 0 {
		return gl.NO_ERROR
	}
	e := q.codes[0]
	q.codes = q.codes[1:]
	return e
}

func fakeErrors(t *testing.T) *errorQueue {
	t.Helper()
	q := &errorQueue{}
	orig := getError
	getError = q.next
	t.Cleanup(func() { getError = orig })
	return q
}

func TestCheckAllocIgnoresStaleErrors(t *testing.T) {
	q := fakeErrors(t)
	d := &Device{log: zap.NewNop()}

	q.push(gl.INVALID_ENUM, gl.INVALID_OPERATION)
	d.discardErrors()
	assert.Empty(t, q.codes)
	assert.NoError(t, checkAlloc("create texture"))
}

func TestCheckAllocReportsOwnErrors(t *testing.T) {
	q := fakeErrors(t)
	d := &Device{log: zap.NewNop()}

	q.push(gl.INVALID_ENUM)
	d.discardErrors()
	q.push(gl.INVALID_VALUE, gl.OUT_OF_MEMORY)
	assert.ErrorIs(t, checkAlloc("create vertex buffer"), gpu.ErrOutOfMemory)
	assert.Empty(t, q.codes, "queue is drained")

	q.push(gl.INVALID_VALUE)
	err := checkAlloc("create uniform buffer")
	assert.EqualError(t, err, "create uniform buffer: GL error 0x501")
	assert.NotErrorIs(t, err, gpu.ErrOutOfMemory)
}
