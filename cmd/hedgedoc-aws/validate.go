package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/validation"
)

// errValidationFailed is returned when the plan has errors.
var errValidationFailed = errors.New("validation failed")

// newValidateCmd creates the "validate" subcommand for checking the plan.
func newValidateCmd(g *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and the deployment plan",
		Long: `Validate checks the stack configuration, renders the plan and checks it.

Checks performed:
  - Configuration: every required value is set
  - Reference validity: every Ref, Fn::GetAtt and DependsOn names a resource
  - cfn-lint: CloudFormation schema and best-practice rules

Examples:
    hedgedoc-aws validate
    hedgedoc-aws validate --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), g, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

// runValidate renders the plan and reports its problems.
func runValidate(ctx context.Context, g *globalOptions, format string) error {
	cfg, err := g.loadOffline()
	if err != nil {
		return outputValidateResult(hedgedoc.ValidateResult{Errors: []string{err.Error()}}, format)
	}

	t, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn))
	if err != nil {
		return outputValidateResult(hedgedoc.ValidateResult{Errors: []string{err.Error()}}, format)
	}

	result, err := validation.ValidateTemplate(t)
	if err != nil {
		return err
	}
	return outputValidateResult(result.Contract(), format)
}

func outputValidateResult(result hedgedoc.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Printf("  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Println("Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return errValidationFailed
	}

	return nil
}
