// Package sse - Test validate cuid chặn trước store và publish payload không serialize được.
package sse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newNilClientCache tạo SseCache với client nil: mọi thao tác chạm vào store
// sẽ panic, chứng minh các đường validate-fail không đụng đến Redis.
func newNilClientCache() *SseCache {
	return NewSseCache(nil, 0)
}

func TestNewSseCache_TTLMacDinh(t *testing.T) {
	cache := NewSseCache(nil, 0)
	assert.Equal(t, DefaultChannelTTL, cache.channelTTL, "TTL không hợp lệ phải rơi về mặc định 2 giờ")

	cache = NewSseCache(nil, 30*time.Minute)
	assert.Equal(t, 30*time.Minute, cache.channelTTL)
}

func TestCuidKhongHopLe_KhongChamStore(t *testing.T) {
	cache := newNilClientCache()
	ctx := context.Background()

	// Client nil nên bất kỳ lệnh Redis nào cũng panic.
	// Test pass nghĩa là validate đã chặn trước khi chạm store.
	results := []CacheResult{
		cache.StoreUserChannels(ctx, "user-1", "bad cuid!", []string{"ch"}),
		cache.GetUserChannels(ctx, "user-1", "bad cuid!"),
		cache.RemoveUserChannels(ctx, "user-1", "bad cuid!"),
		cache.AddUserToChannel(ctx, "ch", "user-1", "bad cuid!"),
		cache.RemoveUserFromChannel(ctx, "ch", "user-1", "bad cuid!"),
		cache.SubscribeToChannels(ctx, []string{"ch"}, "bad cuid!", func(string, string) {}),
		cache.UnsubscribeFromChannels(ctx, []string{"ch"}, "bad cuid!"),
		cache.ReleaseUserChannels(ctx, "user-1", "bad cuid!", []string{"ch"}),
	}

	for i, result := range results {
		require.False(t, result.Success, "thao tác %d với cuid sai định dạng phải thất bại", i)
		assert.Equal(t, ErrMsgInvalidCuid, result.Error, "thao tác %d phải trả về thông báo chuẩn", i)
	}
}

func TestStoreUserChannels_DanhSachRong(t *testing.T) {
	cache := newNilClientCache()
	result := cache.StoreUserChannels(context.Background(), "user-1", "tenant-01", nil)
	require.False(t, result.Success, "danh sách channel rỗng phải bị từ chối")
}

func TestPublishToChannel_PayloadVongTron(t *testing.T) {
	cache := newNilClientCache()

	// Payload tự tham chiếu: json.Marshal phải thất bại trước khi publish
	circular := map[string]interface{}{}
	circular["self"] = circular

	result := cache.PublishToChannel(context.Background(), "ch", circular)
	require.False(t, result.Success, "payload vòng tròn phải trả về lỗi có cấu trúc, không panic")
	assert.True(t, strings.Contains(result.Error, "circular"),
		"thông báo lỗi phải nhắc đến circular structure, có: %q", result.Error)
}

func TestMessage_EnvelopeJSON(t *testing.T) {
	msg := Message{
		ID:        "msg-1",
		Event:     "notification",
		Data:      map[string]interface{}{"title": "Xin chào"},
		Timestamp: 1756700000000,
	}

	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	for _, key := range []string{"id", "event", "data", "timestamp"} {
		assert.Contains(t, decoded, key, "envelope phải có trường %s", key)
	}
}

func TestSubscriptionKey_TatDinh(t *testing.T) {
	first := subscriptionKey("tenant-01", []string{"a", "b"})
	second := subscriptionKey("tenant-01", []string{"a", "b"})
	assert.Equal(t, first, second)

	other := subscriptionKey("tenant-02", []string{"a", "b"})
	assert.NotEqual(t, first, other, "key của hai tenant không được trùng")
}

func TestNewSubscriptionKey_MoiPhienMotKey(t *testing.T) {
	channels := []string{"a", "b"}
	prefix := subscriptionKey("tenant-01", channels) + "|"

	// Hai phiên của cùng một user trên cùng channel list (ví dụ hai tab trình duyệt)
	// phải nhận hai key khác nhau để không chặn lẫn nhau
	first := newSubscriptionKey("tenant-01", channels)
	second := newSubscriptionKey("tenant-01", channels)

	assert.NotEqual(t, first, second, "mỗi phiên subscribe phải có key riêng")
	assert.True(t, strings.HasPrefix(first, prefix), "key phải giữ tiền tố cuid|channels")
	assert.True(t, strings.HasPrefix(second, prefix), "key phải giữ tiền tố cuid|channels")
}

func TestUnsubscribeByKey_KhongTonTai(t *testing.T) {
	cache := newNilClientCache()

	result := cache.UnsubscribeByKey("")
	require.False(t, result.Success, "key rỗng phải bị từ chối")

	result = cache.UnsubscribeByKey("tenant-01|ch|phien-khong-ton-tai")
	require.False(t, result.Success, "key chưa từng đăng ký phải trả về thất bại")
	assert.True(t, strings.Contains(result.Error, "Không tìm thấy"), "có: %q", result.Error)
}

// commandRecorder là hook go-redis ghi lại tên lệnh và nuốt lệnh trước khi
// chạm mạng, cho phép test chuỗi thao tác Redis mà không cần server.
type commandRecorder struct {
	names *[]string
}

func (r commandRecorder) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (r commandRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		*r.names = append(*r.names, cmd.Name())
		return nil
	}
}

func (r commandRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			*r.names = append(*r.names, cmd.Name())
		}
		return nil
	}
}

func TestReleaseUserChannels_GoSachBookkeeping(t *testing.T) {
	var names []string
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	client.AddHook(commandRecorder{names: &names})

	cache := NewSseCache(client, 0)
	channels := []string{"notifications:tenant-01:user:u1", "notifications:tenant-01:general"}

	result := cache.ReleaseUserChannels(context.Background(), "user-1", "tenant-01", channels)
	require.True(t, result.Success)

	var delCount, sremCount int
	for _, name := range names {
		switch name {
		case "del":
			delCount++
		case "srem":
			sremCount++
		}
	}
	assert.Equal(t, 1, delCount, "phải xóa channel list của user đúng một lần")
	assert.Equal(t, len(channels), sremCount,
		"phải gỡ user khỏi subscriber set của từng channel, kể cả khi dọn sau lỗi subscribe")
}
