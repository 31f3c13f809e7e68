package connect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterAndBroadcast(t *testing.T) {
	m := NewManager()

	phone := NewClient(nil, "tg:1", "conn-a")
	laptop := NewClient(nil, "tg:1", "conn-b")
	other := NewClient(nil, "tg:2", "conn-a")
	m.Register(phone)
	m.Register(laptop)
	m.Register(other)

	assert.Equal(t, 3, m.Count())

	// 按用户广播，两端各入队一条
	sent := m.SendToUser("tg:1", []byte("hello"))
	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, m.SendToUser("tg:9", []byte("hello")))
}

func TestManagerReplaceSameKey(t *testing.T) {
	m := NewManager()

	old := NewClient(nil, "tg:1", "conn-a")
	require.Nil(t, m.Register(old))

	fresh := NewClient(nil, "tg:1", "conn-a")
	replaced := m.Register(fresh)
	assert.Same(t, old, replaced)
	assert.Equal(t, 1, m.Count())

	// 旧连接的注销不能误删新连接
	m.Unregister(old)
	assert.Equal(t, 1, m.Count())
	m.Unregister(fresh)
	assert.Equal(t, 0, m.Count())
}

func TestManagerEnqueueAfterClientClosed(t *testing.T) {
	m := NewManager()
	c := NewClient(nil, "tg:1", "conn-a")
	m.Register(c)

	close(c.done)
	assert.Equal(t, 0, m.SendToUser("tg:1", []byte("hello")))
}
