package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

func jobName() string {
	if name := os.Getenv("APP_NAME"); name != "" {
		return name
	}
	return "simple-shop"
}

// buildLogEntry wraps one log line in a Loki push payload.
func buildLogEntry(level, message string, attrs []slog.Attr) map[string]interface{} {
	now := time.Now()
	return map[string]interface{}{
		"streams": []map[string]interface{}{
			{
				"stream": map[string]string{
					"level": level,
					"job":   jobName(),
				},
				"values": [][]string{
					{
						fmt.Sprintf("%d", now.UnixNano()),
						buildLogLine(level, message, now, attrs),
					},
				},
			},
		},
	}
}

func buildLogLine(level, message string, at time.Time, attrs []slog.Attr) string {
	logData := map[string]interface{}{
		"level":   level,
		"message": message,
		"time":    at.Format(time.RFC3339),
	}

	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Any()
	}

	jsonBytes, err := json.Marshal(logData)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"message":%q}`, level, message)
	}
	return string(jsonBytes)
}
