package config

type IngestionConfig struct {
	Logs              Logging        `mapstructure:"logs"`
	Server            HttpServer     `mapstructure:"server"`
	PublisherEventBus EventBusEngine `mapstructure:"publisher_event_bus"`
	Telemetry         Telemetry      `mapstructure:"telemetry"`
	DeviceAuth        DeviceAuth     `mapstructure:"device_auth"`
}

// Telemetry holds the ingestion policy: the destination topic and the
// operational bounds accepted for a reading value. The bounds are inclusive.
type Telemetry struct {
	Topic    string  `mapstructure:"topic"`
	MinValue float64 `mapstructure:"min_value"`
	MaxValue float64 `mapstructure:"max_value"`
}

type DeviceAuth struct {
	SigningKey SigningKey `mapstructure:"signing_key"`
	RolesClaim string     `mapstructure:"roles_claim"`
	DeviceRole string     `mapstructure:"device_role"`
}

// SigningKey selects where the symmetric key used to verify device bearer
// tokens comes from. The selection happens once at startup.
type SigningKey struct {
	Mode      SigningKeyMode `mapstructure:"mode"`
	StaticKey Password       `mapstructure:"static_key"`
	SSMConfig SSMParameter   `mapstructure:"aws_ssm"`
}

type SigningKeyMode string

const (
	SigningKeyStatic SigningKeyMode = "static"
	SigningKeyAWSSSM SigningKeyMode = "aws_ssm"
)

type SSMParameter struct {
	ParameterName string       `mapstructure:"parameter_name"`
	AWSConfig     AWSSDKConfig `mapstructure:"aws"`
}
