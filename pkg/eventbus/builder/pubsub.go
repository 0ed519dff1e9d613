package builder

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/sirupsen/logrus"
	wotel "github.com/voi-oss/watermill-opentelemetry/pkg/opentelemetry"
)

func NewEventBusPublisher(conf config.EventBusEngine, serviceID string, logger *logrus.Entry) (message.Publisher, error) {
	engine, err := BuildEventBusEngine(string(conf.Provider), conf.Config, serviceID, logger)
	if err != nil {
		logger.Errorf("could not generate Event Bus Publisher: %s", err)
		return nil, err
	}

	pub, err := engine.Publisher()
	if err != nil {
		logger.Errorf("could not generate Event Bus Publisher: %s", err)
		return nil, err
	}

	return wotel.NewPublisherDecorator(pub), nil
}
