package awssns

import (
	"context"

	wsns "github.com/ThreeDotsLabs/watermill-aws/sns"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/eventbus"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"
)

func NewSnsPublisher(conf config.AWSSDKConfig, logger *logrus.Entry) (message.Publisher, error) {
	awsConf, err := config.GetAwsSdkConfig(conf)
	if err != nil {
		return nil, err
	}

	account, err := getAWSAccountID(conf)
	if err != nil {
		logger.Errorf("could not get AWS account ID: %s", err)
		return nil, err
	}

	topicResolver, err := wsns.NewGenerateArnTopicResolver(account, conf.Region)
	if err != nil {
		logger.Errorf("could not create topic resolver: %s", err)
		return nil, err
	}

	lEventBus := eventbus.NewLoggerAdapter(logger.WithField("subsystem-provider", "AWS.SNS - Publisher"))

	pub, err := wsns.NewPublisher(
		wsns.PublisherConfig{
			AWSConfig:     *awsConf,
			TopicResolver: topicResolver,
		},
		lEventBus,
	)
	if err != nil {
		return nil, err
	}

	return pub, nil
}

func getAWSAccountID(awsConfig config.AWSSDKConfig) (string, error) {
	awsConf, err := config.GetAwsSdkConfig(awsConfig)
	if err != nil {
		return "", err
	}

	stsClient := sts.NewFromConfig(*awsConf)

	callIDOutput, err := stsClient.GetCallerIdentity(context.Background(), &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}

	return *callIDOutput.Account, nil
}
