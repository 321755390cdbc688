package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath    string `json:"selfpath"`
	Port        string `json:"port"`
	Blocksize   int    `json:"blocksize"`
	Database    string `json:"database"`
	OutputDir   string `json:"output_dir"`
	SkinsDir    string `json:"skins_dir"`
	IdleTimeout int    `json:"idle_timeout_seconds"` // 会话空闲多久后回收
}

var (
	instance *AppConfig
	once     sync.Once
)

func defaults() *AppConfig {
	return &AppConfig{
		SelfPath:    "127.0.0.1:38870", // Default value
		Port:        "38870",           // Default value
		Blocksize:   24,
		Database:    "snaky.db",
		OutputDir:   "./output",
		SkinsDir:    "./skins",
		IdleTimeout: 600,
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) (*AppConfig, error) {
	var err error
	once.Do(func() {
		instance = defaults()
		// Load the config file if it exists, otherwise create one
		if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
			err = saveConfig(filePath)
		} else {
			err = loadConfig(filePath)
		}
	})
	return instance, err
}

// loadConfig loads the settings from the file
func loadConfig(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(instance); err != nil {
		return fmt.Errorf("decode config %s: %w", filePath, err)
	}
	if instance.Blocksize <= 0 {
		return fmt.Errorf("blocksize must be positive, got %d", instance.Blocksize)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(instance)
}

func current() *AppConfig {
	if instance == nil {
		return defaults()
	}
	return instance
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	c := current()
	switch key {
	case "selfpath":
		return c.SelfPath
	case "port":
		return c.Port
	case "blocksize":
		return c.Blocksize
	case "database":
		return c.Database
	case "output_dir":
		return c.OutputDir
	case "skins_dir":
		return c.SkinsDir
	case "idle_timeout_seconds":
		return c.IdleTimeout
	default:
		return ""
	}
}
