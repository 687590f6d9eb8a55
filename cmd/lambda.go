package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

// startLambda hands control to the Lambda runtime; replaced in tests.
var startLambda = func(handler any) { lambda.Start(handler) }

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function behind API Gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			appInstance.Logger().Info("starting lambda runtime")
			startLambda(appInstance.Handler().HandleAPIGateway)
			return nil
		},
	}
}
