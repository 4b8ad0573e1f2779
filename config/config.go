package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm thông tin MongoDB (notification store), Redis (channel fan-out) và server.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên database chứa notifications
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Redis Configuration (channel pub/sub + subscriber bookkeeping)
	Redis_Address  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"` // Địa chỉ Redis server
	Redis_Password string `env:"REDIS_PASSWORD"`                            // Mật khẩu Redis (để trống nếu không auth)
	Redis_DB       int    `env:"REDIS_DB" envDefault:"0"`                   // Redis database number
	Redis_PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`           // Kích thước connection pool

	// Notification Configuration
	Notification_ExpiryDays     int `env:"NOTIFICATION_EXPIRY_DAYS" envDefault:"30"`      // Số ngày mặc định trước khi notification hết hạn (TTL)
	Notification_RetentionDays  int `env:"NOTIFICATION_RETENTION_DAYS" envDefault:"30"`   // Số ngày giữ notification đã soft-delete trước khi purge
	Notification_CleanupMinutes int `env:"NOTIFICATION_CLEANUP_MINUTES" envDefault:"360"` // Khoảng thời gian giữa các lần chạy cleanup worker (phút)
	Channel_TTLMinutes          int `env:"CHANNEL_TTL_MINUTES" envDefault:"120"`          // TTL cho channel list của user trong cache (phút)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// Không fatal: cho phép chạy bằng env variables có sẵn (container/CI)
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
