package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// sessionLogPath names the log file of one command run, for example
// logs/serve.20260212_213836.log.
func sessionLogPath(logsDir, command string, start time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", command, start.Format("20060102_150405")),
	)
}

// OpenSessionLog creates logsDir when needed and opens the session log for
// command in append mode.
func OpenSessionLog(logsDir, command string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	f, err := os.OpenFile(sessionLogPath(logsDir, command, start), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
