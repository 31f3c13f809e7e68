package config

import "time"

// MySQLConfig 数据库配置。
type MySQLConfig struct {
	DSN                    string   `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
	ReplicaDSNs            []string `json:"replicaDsns" yaml:"replicaDsns" mapstructure:"replicaDsns"` // 只读副本，空则不挂 dbresolver
	MaxOpenConns           int      `json:"maxOpenConns" yaml:"maxOpenConns" mapstructure:"maxOpenConns"`
	MaxIdleConns           int      `json:"maxIdleConns" yaml:"maxIdleConns" mapstructure:"maxIdleConns"`
	ConnMaxLifetimeMinutes int      `json:"connMaxLifetimeMinutes" yaml:"connMaxLifetimeMinutes" mapstructure:"connMaxLifetimeMinutes"`
}

// DefaultMySQLConfig 返回本地开发的默认配置。
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		DSN:                    "root:root@tcp(127.0.0.1:3306)/crew?charset=utf8mb4&parseTime=True&loc=Local",
		MaxOpenConns:           50,
		MaxIdleConns:           10,
		ConnMaxLifetimeMinutes: 30,
	}
}

// RedisConfig Redis 配置。
type RedisConfig struct {
	Addr         string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password     string        `json:"password" yaml:"password" mapstructure:"password"`
	DB           int           `json:"db" yaml:"db" mapstructure:"db"`
	PoolSize     int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`
}

// DefaultRedisConfig 返回本地开发的默认配置。
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "127.0.0.1:6379",
		DB:           0,
		PoolSize:     20,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
	}
}

// AsyncConfig 协程池配置。
// 只用于异步任务执行，不负责定时/调度。
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`                         // 协程池容量
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks" mapstructure:"maxBlockingTasks"` // 最大阻塞任务数（0 表示不限制）
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration" mapstructure:"expiryDuration"`       // 空闲 worker 过期时间
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking" mapstructure:"nonblocking"`                // 是否非阻塞提交
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout" mapstructure:"releaseTimeout"`       // 优雅释放等待时间
}

// DefaultAsyncConfig 返回本地开发的默认配置。
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         256,
		MaxBlockingTasks: 0,
		ExpiryDuration:   10 * time.Second,
		Nonblocking:      false,
		ReleaseTimeout:   5 * time.Second,
	}
}

// KafkaConfig Kafka 配置（app 平台推送通道）。
type KafkaConfig struct {
	Brokers   []string `json:"brokers" yaml:"brokers" mapstructure:"brokers"`
	PushTopic string   `json:"pushTopic" yaml:"pushTopic" mapstructure:"pushTopic"` // 移动端推送管道消费的主题
}

// DefaultKafkaConfig 返回本地开发的默认配置。
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:   []string{"127.0.0.1:9092"},
		PushTopic: "crew.push.notifications",
	}
}

// MinioConfig 对象存储配置（头像）。
type MinioConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `json:"accessKey" yaml:"accessKey" mapstructure:"accessKey"`
	SecretKey string `json:"secretKey" yaml:"secretKey" mapstructure:"secretKey"`
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	UseSSL    bool   `json:"useSSL" yaml:"useSSL" mapstructure:"useSSL"`
}

// DefaultMinioConfig 返回本地开发的默认配置。
func DefaultMinioConfig() MinioConfig {
	return MinioConfig{
		Endpoint:  "127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "crew-avatars",
	}
}
