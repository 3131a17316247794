package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindGroupProvider_Lifecycle(t *testing.T) {
	p := NewBindGroupProvider("joint_0")

	assert.Equal(t, "joint_0", p.Label())
	assert.False(t, p.Initialized())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))

	p.MarkInitialized()
	assert.True(t, p.Initialized())

	p.Release()
	assert.True(t, p.Released())
	assert.False(t, p.Initialized())
	assert.Empty(t, p.Buffers())

	// A second release is a no-op.
	assert.NotPanics(t, p.Release)
}

func TestBindGroupProvider_BuffersIsACopy(t *testing.T) {
	p := NewBindGroupProvider("scene", WithBuffer(2, nil))

	m := p.Buffers()
	assert.Len(t, m, 1)
	delete(m, 2)
	assert.Len(t, p.Buffers(), 1)
}
