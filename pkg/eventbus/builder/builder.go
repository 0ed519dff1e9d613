package builder

import (
	"github.com/agrocloud/ingestion/pkg/eventbus"
	"github.com/agrocloud/ingestion/pkg/eventbus/amqp"
	"github.com/agrocloud/ingestion/pkg/eventbus/awssns"
	"github.com/agrocloud/ingestion/pkg/eventbus/channel"
	"github.com/sirupsen/logrus"
)

func BuildEventBusEngine(provider string, config interface{}, serviceId string, logger *logrus.Entry) (eventbus.EventBusEngine, error) {
	return eventbus.GetEventBusEngine(provider, config, serviceId, logger)
}

func init() {
	amqp.Register()
	awssns.Register()
	channel.Register()
}
