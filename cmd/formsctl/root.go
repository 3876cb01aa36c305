package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/prognoshealth/formsapi/config"
	"github.com/prognoshealth/formsapi/forms"
	"github.com/prognoshealth/formsapi/proxy"
	"github.com/prognoshealth/formsapi/store"
)

// RootCmd returns the formsctl command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formsctl",
		Short:         "Manage the forms API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(tablesRootCmd())
	cmd.AddCommand(invokeCmd())
	return cmd
}

type tableFlags struct {
	forms     string
	responses string
	region    string
	endpoint  string
}

// register flags related to DynamoDB, defaulting to the environment
func (f *tableFlags) register(cmd *cobra.Command) {
	responses := os.Getenv("RESPONSES_TABLE")
	if responses == "" {
		responses = os.Getenv("RESPONSE_TABLE")
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cmd.Flags().StringVar(&f.forms, "forms-table", os.Getenv("FORMS_TABLE"), "DynamoDB table for forms")
	cmd.Flags().StringVar(&f.responses, "responses-table", responses, "DynamoDB table for responses")
	cmd.Flags().StringVar(&f.region, "region", region, "AWS region for DynamoDB")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", os.Getenv("DYNAMO_ENDPOINT"), "Endpoint for DynamoDB")
}

func (f *tableFlags) config() (*config.Config, error) {
	cfg := &config.Config{
		FormsTable:     f.forms,
		ResponsesTable: f.responses,
		Region:         f.region,
		Endpoint:       f.endpoint,
		LogLevel:       "info",
		LogFormat:      "text",
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tablesRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage the DynamoDB tables",
	}
	cmd.AddCommand(tablesCreateCmd())
	return cmd
}

func tablesCreateCmd() *cobra.Command {
	flags := &tableFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the forms and responses tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}

			db, err := cfg.Dynamo()
			if err != nil {
				return err
			}

			if err := db.CreateTables(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tables %s and %s are created.\n", cfg.FormsTable, cfg.ResponsesTable)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func invokeCmd() *cobra.Command {
	var eventFiles []string
	var memory bool

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run events through the lambda handler and print the responses",
		Long: "Run events through the lambda handler and print the responses.\n\n" +
			"Events are handled in order by one handler, so with --memory later events\n" +
			"see what earlier ones stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var handler *forms.Handler
			if memory {
				handler = memoryHandler()
			} else {
				handler = forms.Configure(config.Load())
			}

			for _, name := range eventFiles {
				if err := invoke(cmd.Context(), handler, name, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&eventFiles, "event", nil, "JSON event file, may be repeated")
	cmd.Flags().BoolVar(&memory, "memory", false, "Use an in-memory store instead of DynamoDB")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

// memoryHandler builds a handler over a fresh in-memory store. Table settings
// are not needed, so only logging and stage settings are taken from config.
func memoryHandler() *forms.Handler {
	cfg, _ := config.Load()

	stages := proxy.NewStageSet(proxy.DefaultStageNames...)
	if cfg == nil {
		cfg = &config.Config{LogLevel: "info", LogFormat: "text"}
	} else if len(cfg.StagePrefixes) > 0 {
		stages = proxy.NewStageSet(cfg.StagePrefixes...)
	}

	m := store.NewMemory()
	return forms.NewHandler(forms.NewHandlers(m, m, cfg.Logger()), stages)
}

func invoke(ctx context.Context, handler *forms.Handler, name string, out io.Writer) error {
	raw, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "failed reading event %s", name)
	}

	response, err := handler.Invoke(ctx, raw)
	if err != nil {
		return errors.Wrapf(err, "failed invoking %s", name)
	}

	encoded, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed encoding response")
	}

	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
