package channel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"CrewServer/pkg/logger"
)

var channelTestOnce sync.Once

func initChannelTest() {
	channelTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type recordingSender struct {
	got []string
	ok  bool
}

func (r *recordingSender) Send(_ context.Context, platformUserID, _ string) bool {
	r.got = append(r.got, platformUserID)
	return r.ok
}

func TestSplitPlatformID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrefix string
		wantRest   string
		wantOK     bool
	}{
		{"telegram", "tg:123456", "tg", "123456", true},
		{"app", "app:42", "app", "42", true},
		{"mail_keeps_rest_intact", "mail:a@b.c", "mail", "a@b.c", true},
		{"no_separator", "123456", "", "", false},
		{"empty_prefix", ":42", "", "", false},
		{"empty_rest", "tg:", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, rest, ok := SplitPlatformID(tt.input)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantRest, rest)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestDispatcherRouting(t *testing.T) {
	initChannelTest()

	t.Run("routes_by_prefix", func(t *testing.T) {
		tg := &recordingSender{ok: true}
		mail := &recordingSender{ok: true}
		d := NewDispatcher()
		d.Register("tg", tg)
		d.Register("mail", mail)

		assert.True(t, d.Send(context.Background(), "tg:123", "hello"))
		assert.True(t, d.Send(context.Background(), "mail:a@b.c", "hello"))
		assert.Equal(t, []string{"tg:123"}, tg.got)
		assert.Equal(t, []string{"mail:a@b.c"}, mail.got)
	})

	t.Run("unknown_prefix_fails", func(t *testing.T) {
		d := NewDispatcher()
		assert.False(t, d.Send(context.Background(), "sms:123", "hello"))
	})

	t.Run("malformed_id_fails", func(t *testing.T) {
		d := NewDispatcher()
		d.Register("tg", &recordingSender{ok: true})
		assert.False(t, d.Send(context.Background(), "no-prefix", "hello"))
	})

	t.Run("sender_failure_propagates", func(t *testing.T) {
		d := NewDispatcher()
		d.Register("tg", &recordingSender{ok: false})
		assert.False(t, d.Send(context.Background(), "tg:123", "hello"))
	})
}
