package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// parametersByPathAPI is the subset of the SSM client used for loading parameters.
type parametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters reads every parameter below parameterPath and returns them keyed by the
// last path segment, so /shipyard/prod/DATABASE_URL becomes DATABASE_URL.
func LoadSSMParameters(ctx context.Context, region, parameterPath string) (map[string]string, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return loadParameters(ctx, ssm.NewFromConfig(awsCfg), parameterPath)
}

func loadParameters(ctx context.Context, client parametersByPathAPI, parameterPath string) (map[string]string, error) {
	values := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read ssm parameters under %s: %w", parameterPath, err)
		}
		for _, param := range page.Parameters {
			name := strings.TrimSpace(aws.ToString(param.Name))
			if name == "" {
				continue
			}
			values[path.Base(name)] = aws.ToString(param.Value)
		}
	}

	return values, nil
}
