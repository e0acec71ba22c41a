package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"vatdesk/internal/config"
	"vatdesk/internal/logger"
	"vatdesk/internal/vat"
)

var version = "1.0.0"

// appConfig is set by Execute; nil when the environment could not be loaded.
var appConfig *config.Config

var validate = validator.New()

var rootCmd = &cobra.Command{
	Use:   "vatdesk",
	Short: "vatdesk - VAT calculations for invoices, commissions and tax declarations",
	Long: `vatdesk recalculates invoices and commission batches and prepares
quarterly VAT declarations.

All amounts are computed at full precision and rounded only for output.
The VAT rate comes from VAT_RATE (default 15%) and can be overridden per
command with --rate.`,
	Version:      version,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("vatdesk executed")

		fmt.Fprintln(cmd.OutOrStdout(), "Welcome to vatdesk!")
		fmt.Fprintln(cmd.OutOrStdout(), "Use --help to see available commands and options.")
	},
}

// Execute runs the root command with the loaded configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("rate", "", "VAT rate override, e.g. 0.15 or 15% (default: VAT_RATE)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().Int32("round", 2, "Decimal places for output amounts (-1 keeps full precision)")
}

// vatRate resolves the rate for a command: --rate, then VAT_RATE, then the standard rate.
func vatRate(cmd *cobra.Command) (vat.Rate, error) {
	if raw, _ := cmd.Flags().GetString("rate"); raw != "" {
		rate, err := vat.ParseRate(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid --rate %q: %w", raw, err)
		}
		return rate, nil
	}
	if appConfig != nil {
		return appConfig.VATRate, nil
	}
	return vat.Standard, nil
}

// readInput decodes and validates a JSON input file.
func readInput(path string, v interface{}, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Input file not found")
			return fmt.Errorf("input file not found: %s", path)
		}
		return fmt.Errorf("failed to read input file: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Input file is not valid JSON")
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := validate.Struct(v); err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Input validation failed")
		return fmt.Errorf("invalid input in %s: %w", path, toValidationError(err))
	}
	return nil
}

// ValidationError describes the first invalid field of an input document.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	msg := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gte":
		msg = "must not be less than " + fe.Param()
	case "oneof":
		msg = "must be one of: " + fe.Param()
	}
	return &ValidationError{Field: fe.Namespace(), Value: fe.Value(), Message: msg}
}

// writeOutput prints v as indented JSON to the output file or the command's stdout.
func writeOutput(cmd *cobra.Command, v interface{}, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output")
		return fmt.Errorf("failed to format output: %w", err)
	}
	jsonData = append(jsonData, '\n')

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			log.Error().
				Err(err).
				Str("output", outputPath).
				Msg("Failed to create output file")
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close output file")
			}
		}()
		out = f
	}

	if _, err := out.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if outputPath != "" {
		log.Info().
			Str("output", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Results written to file")
	}
	return nil
}

// commandContext creates a context with timeout that is also canceled on interrupt.
// log travels with the context so services log with the command's fields.
func commandContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(log.WithContext(context.Background()), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
