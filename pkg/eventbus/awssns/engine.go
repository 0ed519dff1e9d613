package awssns

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/eventbus"
	"github.com/sirupsen/logrus"
)

func Register() {
	eventbus.RegisterEventBusEngine(string(config.AWSSns), func(eventBusProvider string, conf interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
		return NewAWSEngine(conf, serviceId, logger)
	})
}

type AwsEngine struct {
	logger    *logrus.Entry
	config    config.AWSSDKConfig
	serviceID string
	publisher message.Publisher
}

func NewAWSEngine(conf interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	localConf, err := config.DecodeStruct[config.AWSSDKConfig](conf)
	if err != nil {
		logger.Errorf("could not decode AWS SNS config: %s", err)
		return nil, err
	}
	return &AwsEngine{
		logger:    logger,
		config:    localConf,
		serviceID: serviceId,
	}, nil
}

func (e *AwsEngine) Publisher() (message.Publisher, error) {
	if e.publisher == nil {
		publisher, err := NewSnsPublisher(e.config, e.logger)
		if err != nil {
			e.logger.Errorf("could not generate Event Bus Publisher: %s", err)
			return nil, err
		}
		e.publisher = publisher
	}

	return e.publisher, nil
}
