package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Service Service `yaml:"service"`
	Server  Server  `yaml:"server"`
}

type Service struct {
	FQDN            string `yaml:"fqdn"`
	TokenSecret     string `yaml:"tokenSecret"`
	TokenTTLMinutes int    `yaml:"tokenTTLMinutes"`
	TrialDays       int    `yaml:"trialDays"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	AuthRateLimit uint64 `yaml:"authRateLimit"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Service.FQDN == "" {
		return Config{}, fmt.Errorf("config: fqdn is required")
	}
	if config.Service.TokenSecret == "" {
		return Config{}, fmt.Errorf("config: tokenSecret is required")
	}
	if config.Service.TokenTTLMinutes <= 0 {
		config.Service.TokenTTLMinutes = 60
	}
	if config.Service.TrialDays <= 0 {
		config.Service.TrialDays = 30
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Server.AuthRateLimit == 0 {
		config.Server.AuthRateLimit = 20
	}

	return config, nil
}
