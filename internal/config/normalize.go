package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()

	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.PluginDir) == "" && c.Paths.DataDir != "" {
		c.Paths.PluginDir = filepath.Join(c.Paths.DataDir, "plugins")
	}
	if c.Paths.PluginDir, err = expandPath(strings.TrimSpace(c.Paths.PluginDir)); err != nil {
		return err
	}
	if c.Detector.Script, err = expandPath(strings.TrimSpace(c.Detector.Script)); err != nil {
		return err
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Events.KafkaTopic = strings.TrimSpace(c.Events.KafkaTopic)

	brokers := c.Events.KafkaBrokers[:0]
	for _, b := range c.Events.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Events.KafkaBrokers = brokers

	for i := range c.Training.Slots {
		c.Training.Slots[i].PoseID = strings.TrimSpace(c.Training.Slots[i].PoseID)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("ASANA_ADDR", c.Server.Addr)
	c.Paths.DataDir = getEnv("ASANA_DATA_DIR", c.Paths.DataDir)
	c.Logging.Level = getEnv("ASANA_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("ASANA_LOG_FORMAT", c.Logging.Format)
	c.Camera.Device = getIntEnv("ASANA_CAMERA_DEVICE", c.Camera.Device)
	if brokers := getEnv("ASANA_KAFKA_BROKERS", ""); brokers != "" {
		c.Events.KafkaBrokers = splitAndTrim(brokers)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
