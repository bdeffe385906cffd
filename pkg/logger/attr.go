package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Channel records a pub/sub channel name under the key "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// RuleCode records a workflow rule code under the key "rule_code".
func RuleCode(code string) slog.Attr {
	return slog.String("rule_code", code)
}
