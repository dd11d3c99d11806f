package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	apperrors "causacion-reconciler/pkg/errors"
	"causacion-reconciler/pkg/logger"
)

// CLIErrorHandler turns errors into user-facing messages and exit codes
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints the error and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if recErr, ok := apperrors.AsReconcilerError(err); ok {
		return h.handleReconcilerError(recErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) handleReconcilerError(err *apperrors.ReconcilerError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", categoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func categoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryFile:
		return "Check that the file path is correct and the file is readable."
	case apperrors.CategoryParse:
		return "Check that the file matches the expected DIAN or contable layout."
	case apperrors.CategoryValidation:
		return "The input data did not pass quality validation. Review the source export."
	case apperrors.CategoryConfiguration:
		return "Check the flag values and the config file for invalid settings."
	case apperrors.CategoryReconciliation:
		return "The reconciliation run failed. Re-run with --verbose for details."
	default:
		return "An unexpected error occurred. Re-run with --verbose for details."
	}
}
