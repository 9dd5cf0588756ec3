package application

import "log/slog"

const LogModule = "finance-core/packet-service"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
