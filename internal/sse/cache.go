package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"prop_manager/internal/global"
	"prop_manager/internal/logger"
)

// Prefix các key trong Redis
const (
	keyUserChannels = "sse:user_channels" // sse:user_channels:{userId}:{cuid} -> set tên channel
	keyChannelUsers = "sse:channel_users" // sse:channel_users:{channel} -> set "userId:cuid"
)

// DefaultChannelTTL là TTL trượt mặc định cho channel list của user
const DefaultChannelTTL = 2 * time.Hour

// ErrMsgInvalidCuid là thông báo lỗi khi cuid sai định dạng
const ErrMsgInvalidCuid = "Invalid tenant ID format"

// CacheResult là kết quả có cấu trúc của các thao tác cache.
// Tầng này không trả error trực tiếp để caller (các connection dài hạn)
// có thể branch thống nhất trên Success.
type CacheResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func okResult(data interface{}) CacheResult {
	return CacheResult{Success: true, Data: data}
}

func failResult(format string, args ...interface{}) CacheResult {
	return CacheResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Message là envelope của mọi message publish lên channel
type Message struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// SseCache quản lý channel subscription và phân phối message qua Redis pub/sub.
// Delivery là at-most-once: không acknowledgement, không retry, không lưu message
// cho subscriber đã ngắt kết nối.
type SseCache struct {
	client     *redis.Client
	channelTTL time.Duration
}

// NewSseCache tạo mới SseCache với Redis client và TTL cho channel list.
// channelTTL <= 0 dùng giá trị mặc định 2 giờ.
func NewSseCache(client *redis.Client, channelTTL time.Duration) *SseCache {
	if channelTTL <= 0 {
		channelTTL = DefaultChannelTTL
	}
	return &SseCache{
		client:     client,
		channelTTL: channelTTL,
	}
}

func userChannelsKey(userID string, cuid string) string {
	return fmt.Sprintf("%s:%s:%s", keyUserChannels, userID, cuid)
}

func channelUsersKey(channel string) string {
	return fmt.Sprintf("%s:%s", keyChannelUsers, channel)
}

// StoreUserChannels lưu danh sách channel hiện tại của user với TTL trượt.
// Validate cuid trước, không chạm vào store nếu cuid sai định dạng.
func (s *SseCache) StoreUserChannels(ctx context.Context, userID string, cuid string, channels []string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}
	if len(channels) == 0 {
		return failResult("Danh sách channel rỗng")
	}

	key := userChannelsKey(userID, cuid)
	members := make([]interface{}, 0, len(channels))
	for _, ch := range channels {
		members = append(members, ch)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, s.channelTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return failResult("Lỗi khi lưu channel list: %v", err)
	}

	return okResult(channels)
}

// GetUserChannels lấy danh sách channel đã lưu của user và làm mới TTL trượt.
// Trả về lỗi not-found nếu entry đã hết hạn hoặc chưa từng tồn tại.
func (s *SseCache) GetUserChannels(ctx context.Context, userID string, cuid string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	key := userChannelsKey(userID, cuid)
	channels, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return failResult("Lỗi khi đọc channel list: %v", err)
	}
	if len(channels) == 0 {
		return failResult("Không tìm thấy channel list của user %s", userID)
	}

	// TTL trượt: mỗi lần đọc thành công gia hạn thêm
	s.client.Expire(ctx, key, s.channelTTL)

	return okResult(channels)
}

// RemoveUserChannels xóa channel list của user (dùng khi disconnect/logout)
func (s *SseCache) RemoveUserChannels(ctx context.Context, userID string, cuid string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	if err := s.client.Del(ctx, userChannelsKey(userID, cuid)).Err(); err != nil {
		return failResult("Lỗi khi xóa channel list: %v", err)
	}
	return okResult(nil)
}

// AddUserToChannel thêm cặp (userId, cuid) vào danh sách subscriber của channel
func (s *SseCache) AddUserToChannel(ctx context.Context, channel string, userID string, cuid string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	member := fmt.Sprintf("%s:%s", userID, cuid)
	if err := s.client.SAdd(ctx, channelUsersKey(channel), member).Err(); err != nil {
		return failResult("Lỗi khi thêm user vào channel: %v", err)
	}
	return okResult(member)
}

// RemoveUserFromChannel gỡ cặp (userId, cuid) khỏi danh sách subscriber của channel
func (s *SseCache) RemoveUserFromChannel(ctx context.Context, channel string, userID string, cuid string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	member := fmt.Sprintf("%s:%s", userID, cuid)
	if err := s.client.SRem(ctx, channelUsersKey(channel), member).Err(); err != nil {
		return failResult("Lỗi khi gỡ user khỏi channel: %v", err)
	}
	return okResult(member)
}

// GetUsersForChannel trả về danh sách subscriber hiện tại của channel
// (các chuỗi composite "userId:cuid")
func (s *SseCache) GetUsersForChannel(ctx context.Context, channel string) CacheResult {
	users, err := s.client.SMembers(ctx, channelUsersKey(channel)).Result()
	if err != nil {
		return failResult("Lỗi khi đọc subscriber của channel: %v", err)
	}
	return okResult(users)
}

// PublishToChannel serialize message và publish lên channel.
// Payload không serialize được (ví dụ chứa tham chiếu vòng) trả về lỗi có cấu trúc,
// không bao giờ panic. Delivery là fire-and-forget.
func (s *SseCache) PublishToChannel(ctx context.Context, channel string, message interface{}) CacheResult {
	payload, err := json.Marshal(message)
	if err != nil {
		return failResult("Không thể serialize message (có thể chứa circular structure): %v", err)
	}

	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		return failResult("Lỗi khi publish lên channel %s: %v", channel, err)
	}

	return okResult(nil)
}

// subscriptionKey sinh phần tiền tố định danh subscription theo cuid và channel list
func subscriptionKey(cuid string, channels []string) string {
	return cuid + "|" + strings.Join(channels, ",")
}

// newSubscriptionKey sinh key duy nhất cho một phiên subscribe. Một user có thể
// mở nhiều phiên song song (nhiều tab) trên cùng channel list nên key mang thêm
// hậu tố riêng của từng phiên.
func newSubscriptionKey(cuid string, channels []string) string {
	return subscriptionKey(cuid, channels) + "|" + uuid.NewString()
}

// SubscribeToChannels đăng ký nhận message từ các channel, callback được gọi
// trên mỗi message. Subscription được track trong registry để Unsubscribe sau này,
// key của phiên nằm trong Data của kết quả trả về.
// Goroutine đọc message có guard recover để callback panic không làm sập server.
func (s *SseCache) SubscribeToChannels(ctx context.Context, channels []string, cuid string, callback func(channel string, payload string)) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}
	if len(channels) == 0 {
		return failResult("Danh sách channel rỗng")
	}

	key := newSubscriptionKey(cuid, channels)

	pubsub := s.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return failResult("Lỗi khi subscribe: %v", err)
	}

	if _, err := global.RegistryPubSub.Register(key, pubsub); err != nil {
		_ = pubsub.Close()
		return failResult("Lỗi khi track subscription: %v", err)
	}

	go func() {
		log := logger.GetAppLogger()
		for msg := range pubsub.Channel() {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"channel": msg.Channel,
							"panic":   fmt.Sprintf("%v", r),
						}).Error("🔔 Panic trong subscription callback")
					}
				}()
				callback(msg.Channel, msg.Payload)
			}()
		}
	}()

	return okResult(key)
}

// UnsubscribeFromChannels hủy mọi phiên subscribe của một cuid trên channel list
// và đóng các kết nối pub/sub tương ứng. Data trả về là số phiên đã hủy.
func (s *SseCache) UnsubscribeFromChannels(ctx context.Context, channels []string, cuid string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	prefix := subscriptionKey(cuid, channels) + "|"
	count := 0
	for _, key := range global.RegistryPubSub.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		deleted, err := global.RegistryPubSub.Clear(key, func(ps *redis.PubSub) error {
			return ps.Close()
		})
		if err != nil {
			return failResult("Lỗi khi hủy subscription: %v", err)
		}
		if deleted {
			count++
		}
	}
	if count == 0 {
		return failResult("Không tìm thấy subscription cho các channel này")
	}

	return okResult(count)
}

// UnsubscribeByKey hủy đúng một phiên subscribe theo key mà SubscribeToChannels
// trả về, không đụng đến các phiên khác của cùng user.
func (s *SseCache) UnsubscribeByKey(key string) CacheResult {
	if key == "" {
		return failResult("Subscription key rỗng")
	}

	deleted, err := global.RegistryPubSub.Clear(key, func(ps *redis.PubSub) error {
		return ps.Close()
	})
	if err != nil {
		return failResult("Lỗi khi hủy subscription: %v", err)
	}
	if !deleted {
		return failResult("Không tìm thấy subscription với key này")
	}

	return okResult(nil)
}

// ReleaseUserChannels dọn bookkeeping của một phiên SSE: xóa channel list của user
// và gỡ user khỏi subscriber set của từng channel
func (s *SseCache) ReleaseUserChannels(ctx context.Context, userID string, cuid string, channels []string) CacheResult {
	if !ValidateCuid(cuid) {
		return failResult(ErrMsgInvalidCuid)
	}

	if result := s.RemoveUserChannels(ctx, userID, cuid); !result.Success {
		return result
	}
	for _, channel := range channels {
		if result := s.RemoveUserFromChannel(ctx, channel, userID, cuid); !result.Success {
			return result
		}
	}

	return okResult(nil)
}
