package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration file. Unset fields keep their defaults.
type File struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	Port     int    `yaml:"port"`
	DevMode  *bool  `yaml:"dev_mode"`

	Controller struct {
		Host    string        `yaml:"host"`
		Port    int           `yaml:"port"`
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"controller"`

	Connectivity struct {
		RetryInterval time.Duration `yaml:"retry_interval"`
		IndicatorTTL  time.Duration `yaml:"indicator_ttl"`
	} `yaml:"connectivity"`

	Notifications struct {
		Buffer    int           `yaml:"buffer"`
		Retention time.Duration `yaml:"retention"`
	} `yaml:"notifications"`
}

// LoadFile parses a YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

func (c *Config) applyFile(path string) error {
	f, err := LoadFile(path)
	if err != nil {
		return err
	}

	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.Port != 0 {
		c.Port = f.Port
	}
	if f.DevMode != nil {
		c.DevMode = *f.DevMode
	}

	if f.Controller.Host != "" {
		c.Controller.Host = f.Controller.Host
	}
	if f.Controller.Port != 0 {
		c.Controller.Port = f.Controller.Port
	}
	if f.Controller.URL != "" {
		c.Controller.URL = f.Controller.URL
	}
	if f.Controller.Timeout != 0 {
		c.Controller.Timeout = f.Controller.Timeout
	}

	if f.Connectivity.RetryInterval != 0 {
		c.Connectivity.RetryInterval = f.Connectivity.RetryInterval
	}
	if f.Connectivity.IndicatorTTL != 0 {
		c.Connectivity.IndicatorTTL = f.Connectivity.IndicatorTTL
	}

	if f.Notifications.Buffer != 0 {
		c.Notifications.BufferSize = f.Notifications.Buffer
	}
	if f.Notifications.Retention != 0 {
		c.Notifications.Retention = f.Notifications.Retention
	}

	return nil
}
