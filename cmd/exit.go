package cmd

import (
	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"
)

// Process exit codes
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitConfig       = 2
	ExitFetch        = 3
	ExitNotification = 4
)

// exitCode maps a run error to the process exit code and logs it
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	errType := apperrors.TypeOf(err)
	logger.Default.Error().Err(err).Str("type", string(errType)).Msg("Run failed")

	switch errType {
	case apperrors.ErrorTypeConfiguration:
		return ExitConfig
	case apperrors.ErrorTypeFetch:
		return ExitFetch
	case apperrors.ErrorTypeNotification:
		return ExitNotification
	default:
		return ExitFailure
	}
}
