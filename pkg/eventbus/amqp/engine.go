package amqp

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/eventbus"
	"github.com/sirupsen/logrus"
)

func Register() {
	eventbus.RegisterEventBusEngine(string(config.Amqp), func(eventBusProvider string, conf interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
		return NewAmqpEngine(conf, serviceId, logger)
	})
}

type AmqpEngine struct {
	logger    *logrus.Entry
	config    AMQPConnection
	serviceID string
	publisher message.Publisher
}

func NewAmqpEngine(conf interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	localConf, err := config.DecodeStruct[AMQPConnection](conf)
	if err != nil {
		logger.Errorf("could not decode AMQP Connection config: %s", err)
		return nil, err
	}
	return &AmqpEngine{
		logger:    logger,
		config:    localConf,
		serviceID: serviceId,
	}, nil
}

func (e *AmqpEngine) Publisher() (message.Publisher, error) {
	if e.publisher == nil {
		publisher, err := NewAMQPPub(e.config, e.serviceID, e.logger)
		if err != nil {
			e.logger.Errorf("could not generate Event Bus Publisher: %s", err)
			return nil, err
		}
		e.publisher = publisher
	}

	return e.publisher, nil
}
