package secrets

import (
	"context"
	"fmt"

	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"
)

// ResolveSigningKey materializes the symmetric key used to verify device
// bearer tokens. Resolution happens once at startup and any failure is
// terminal for the caller.
func ResolveSigningKey(ctx context.Context, conf config.SigningKey, logger *logrus.Entry) ([]byte, error) {
	switch conf.Mode {
	case config.SigningKeyStatic:
		if conf.StaticKey == "" {
			return nil, fmt.Errorf("static signing key is empty")
		}

		logger.Warnf("using static signing key. Not recommended for production environments")
		return []byte(conf.StaticKey), nil
	case config.SigningKeyAWSSSM:
		if conf.SSMConfig.ParameterName == "" {
			return nil, fmt.Errorf("no SSM parameter name configured")
		}

		awsCfg, err := config.GetAwsSdkConfig(conf.SSMConfig.AWSConfig)
		if err != nil {
			logger.Errorf("could not build AWS SDK config: %s", err)
			return nil, err
		}

		ssmCli := ssm.NewFromConfig(*awsCfg)
		out, err := ssmCli.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(conf.SSMConfig.ParameterName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			logger.Errorf("could not fetch SSM parameter %s: %s", conf.SSMConfig.ParameterName, err)
			return nil, err
		}

		if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
			return nil, fmt.Errorf("SSM parameter %s resolved to an empty value", conf.SSMConfig.ParameterName)
		}

		return []byte(*out.Parameter.Value), nil
	default:
		return nil, fmt.Errorf("unsupported signing key mode '%s'", conf.Mode)
	}
}
