package config

type EventBusEngine struct {
	LogLevel LogLevel               `mapstructure:"log_level"`
	Provider EventBusProvider       `mapstructure:"provider"`
	Config   map[string]interface{} `mapstructure:",remain"`
}

type EventBusProvider string

const (
	Amqp    EventBusProvider = "amqp"
	AWSSns  EventBusProvider = "aws_sns"
	Channel EventBusProvider = "channel"
)
