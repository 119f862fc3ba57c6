package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogger writes the log of one analysis run to both stdout and a
// timestamped file under <dir>/<target>/. All methods are nil-safe and fall
// back to the standard logger, so a failed log-file setup never blocks an
// analysis.
type RunLogger struct {
	file   *os.File
	logger *log.Logger
}

func NewRunLogger(dir, target string) (*RunLogger, error) {
	sanitized := sanitizeTarget(target)

	targetDir := filepath.Join(dir, sanitized)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file with timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(targetDir, fmt.Sprintf("analysis_%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	// Create multi-writer for both file and stdout
	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &RunLogger{
		file:   file,
		logger: logger,
	}, nil
}

// sanitizeTarget turns a host or URL fragment into a file-system friendly
// directory name.
func sanitizeTarget(target string) string {
	sanitized := strings.ToLower(strings.TrimSpace(target))
	sanitized = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(sanitized)
	if sanitized == "" {
		return "sitemap"
	}
	return sanitized
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if rl == nil {
		log.Printf("[%s] %s", level, message)
		return
	}
	rl.logger.Printf("[%s] %s", level, message)
}

func (rl *RunLogger) Close() error {
	if rl == nil {
		return nil
	}
	return rl.file.Close()
}
