package publishers

import "github.com/samvad-hq/samvad-newsdesk/internal/logger"

// Logger is the structured logging surface publishers write to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }
