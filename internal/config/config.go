package config

import "time"

type Config interface {
	EnvConfig
	VendorConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetCompaniesFile() string
}

type VendorConfig interface {
	GetVendorTimeout() time.Duration
	GetStreamBuffer() int
}

type SecurityConfig interface {
	GetJWTSecret() string
}

type mainConfig struct {
	EnvVars
	Vendor
	Security
}

func New() Config {
	return mainConfig{}
}
