package config

// LoggerConfig 日志配置。
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level" mapstructure:"level"`                                  // debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding" mapstructure:"encoding"`                         // json/console
	Development      bool     `json:"development" yaml:"development" mapstructure:"development"`                // 开发模式(Error 级别带堆栈)
	EnableColor      bool     `json:"enableColor" yaml:"enableColor" mapstructure:"enableColor"`                // console 编码时彩色等级
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths" mapstructure:"outputPaths"`                // 普通日志输出
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths" mapstructure:"errorOutputPaths"` // 错误日志输出
}

// DefaultLoggerConfig 返回本地开发的默认配置。
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:       "info",
		Encoding:    "json",
		Development: false,
	}
}
