package amqp

import (
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/eventbus"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/sirupsen/logrus"
)

type AMQPConnection struct {
	config.BasicConnection `mapstructure:",squash"`
	Exchange               string                  `mapstructure:"exchange"`
	Protocol               AMQPProtocol            `mapstructure:"protocol"`
	BasicAuth              AMQPConnectionBasicAuth `mapstructure:"basic_auth"`
	ClientTLSAuth          struct {
		Enabled  bool   `mapstructure:"enabled"`
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
	} `mapstructure:"client_tls_auth"`
}

type AMQPConnectionBasicAuth struct {
	Enabled  bool            `mapstructure:"enabled"`
	Username string          `mapstructure:"username"`
	Password config.Password `mapstructure:"password"`
}

type AMQPProtocol string

const (
	AMQP  AMQPProtocol = "amqp"
	AMQPS AMQPProtocol = "amqps"
)

func amqpConfig(conf AMQPConnection, serviceID string, logger *logrus.Entry) (*amqp.Config, error) {
	userPassUrlPrefix := ""
	if conf.BasicAuth.Enabled {
		logger.Debugf("basic auth enabled")
		userPassUrlPrefix = fmt.Sprintf("%s:%s@", url.PathEscape(conf.BasicAuth.Username), url.PathEscape(string(conf.BasicAuth.Password)))
	}

	amqpURL := fmt.Sprintf("%s://%s%s:%d", conf.Protocol, userPassUrlPrefix, conf.Hostname, conf.Port)

	amqpConfig := amqp.NewDurablePubSubConfig(amqpURL, amqp.GenerateQueueNameTopicNameWithSuffix(serviceID))

	amqpTlsConfig := tls.Config{}
	certPool := helpers.LoadSystemCACertPoolWithExtraCAsFromFiles([]string{conf.CACertificateFile})
	amqpTlsConfig.RootCAs = certPool

	if conf.InsecureSkipVerify {
		logger.Debugf("tls InsecureSkipVerify set")
		amqpTlsConfig.InsecureSkipVerify = true
	}

	if conf.ClientTLSAuth.Enabled {
		logger.Debugf("tls loading mTLS client auth")
		clientTLSCerts, err := tls.LoadX509KeyPair(conf.ClientTLSAuth.CertFile, conf.ClientTLSAuth.KeyFile)
		if err != nil {
			logger.Errorf("could not load AMQP client TLS certificate or key: %s", err)
			return nil, err
		}

		amqpTlsConfig.Certificates = append(amqpTlsConfig.Certificates, clientTLSCerts)
	}

	amqpConfig.Connection.TLSConfig = &amqpTlsConfig
	amqpConfig.Exchange = amqp.ExchangeConfig{
		GenerateName: func(topic string) string {
			if conf.Exchange != "" {
				return conf.Exchange
			}
			return "telemetry-events"
		},
		Type:    "topic",
		Durable: true,
	}

	amqpConfig.Publish = amqp.PublishConfig{
		GenerateRoutingKey: func(topic string) string {
			return topic
		},
	}

	return &amqpConfig, nil
}

func NewAMQPPub(conf AMQPConnection, serviceID string, logger *logrus.Entry) (message.Publisher, error) {
	amqpConfig, err := amqpConfig(conf, serviceID, logger)
	if err != nil {
		return nil, err
	}

	lEventBusPub := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AMQP - Publisher"))

	publisher, err := amqp.NewPublisher(*amqpConfig, lEventBusPub)
	if err != nil {
		return nil, fmt.Errorf("could not create publisher: %s", err)
	}

	return publisher, nil
}
