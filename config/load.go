package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 进程级配置聚合。
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Async      AsyncConfig      `mapstructure:"async"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Minio      MinioConfig      `mapstructure:"minio"`
	Federation FederationConfig `mapstructure:"federation"`
	Channel    ChannelConfig    `mapstructure:"channel"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
}

// Default 返回全部默认配置。
func Default() Config {
	return Config{
		Logger:     DefaultLoggerConfig(),
		MySQL:      DefaultMySQLConfig(),
		Redis:      DefaultRedisConfig(),
		Async:      DefaultAsyncConfig(),
		Kafka:      DefaultKafkaConfig(),
		Minio:      DefaultMinioConfig(),
		Federation: DefaultFederationConfig(),
		Channel:    DefaultChannelConfig(),
		Notify:     DefaultNotifyConfig(),
		Gateway:    DefaultGatewayConfig(),
	}
}

// Load 读取配置：默认值 <- 可选 YAML 文件 <- CREW_ 前缀环境变量。
// path 为空时只用默认值和环境变量。
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("CREW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
