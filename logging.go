package swappool

import "go.uber.org/zap"

// nopLogger is the default logger for every Pool/Handle that isn't given
// one explicitly, matching caddy's own zap.NewNop() test-default
// convention (caddyhttp/server_test.go).
func nopLogger() *zap.Logger {
	return zap.NewNop()
}
