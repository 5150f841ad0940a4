// Command hedgedoc-aws deploys a self-hosted HedgeDoc to AWS.
//
// Usage:
//
//	hedgedoc-aws preview             Render the deployment plan
//	hedgedoc-aws up                  Create the stack
//	hedgedoc-aws optimize            Suggest plan improvements
//	hedgedoc-aws outputs             Show the stack hostname
//	hedgedoc-aws destroy             Tear the stack down
//	hedgedoc-aws version             Show version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lex00/hedgedoc-aws-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "hedgedoc-aws",
		Short: "Deploy HedgeDoc on AWS",
		Long: `hedgedoc-aws deploys a self-hosted HedgeDoc on AWS: a VPC, a PostgreSQL
database, an application load balancer behind CloudFront (or TLS on the
load balancer), an S3 bucket for uploads and an ECS Fargate service.

The stack is configured by a YAML file:

    name: hedgedoc1
    region: us-east-1
    database:
      name: hedgedoc
      username: hedgedoc
      password_secret_id: hedgedoc/db
    app:
      session_secret_id: hedgedoc/session

Then preview and deploy it:

    hedgedoc-aws preview
    hedgedoc-aws up`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", config.DefaultFile, "Stack configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "Files with environment overrides")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		newPreviewCmd(g),
		newUpCmd(g),
		newDestroyCmd(g),
		newOutputsCmd(g),
		newListCmd(g),
		newGraphCmd(g),
		newValidateCmd(g),
		newOptimizeCmd(g),
		newDiffCmd(g),
		newWatchCmd(g),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hedgedoc-aws %s\n", getVersion())
		},
	}
}
