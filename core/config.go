package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		InMemory      bool
	}

	ChartConfig struct {
		Height      float64
		ProgressRad float64
		PieRadius   float64
	}

	Config struct {
		AppName          string
		Build            string
		Env              string
		Debug            bool
		TestMode         bool
		FrontendBaseURL  string
		APIBaseURL       string
		MaxUploadSize    int64
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		ClassMailDomain  string
		RollbarToken     string
		WorkDir          string

		Server   ServerConfig
		Database DatabaseConfig
		Chart    ChartConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the app configuration: defaults, then `config/.env.<env>` if it exists, then the environment.
// Environment variables are prefixed with the upper-cased ENV, e.g. DEV_DATABASE_NAME.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("frontendBaseURL", "http://localhost:8080")
	v.SetDefault("apiBaseURL", "http://localhost:8000")
	v.SetDefault("maxUploadSize", int64(10<<20))
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("classMailDomain", "classes.localhost")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server_host", ":8000")
	v.SetDefault("server_debugHost", ":4000")
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 5*time.Second)
	v.SetDefault("server_shutdownTimeout", 5*time.Second)
	v.SetDefault("server_disableReqLogs", false)

	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "masomo")
	v.SetDefault("database_user", "masomo")
	v.SetDefault("database_password", "")
	v.SetDefault("database_adminUser", "postgres")
	v.SetDefault("database_adminPassword", "")
	v.SetDefault("database_disableTLS", true)
	v.SetDefault("database_inMemory", true)

	v.SetDefault("chart_height", 300.0)
	v.SetDefault("chart_progressRadius", 45.0)
	v.SetDefault("chart_pieRadius", 100.0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		APIBaseURL:       v.GetString("apiBaseURL"),
		MaxUploadSize:    v.GetInt64("maxUploadSize"),
		DefaultFromEmail: *from,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		ClassMailDomain:  v.GetString("classMailDomain"),
		RollbarToken:     v.GetString("rollbarToken"),
		WorkDir:          wd,
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			DebugHost:       v.GetString("server_debugHost"),
			ReadTimeout:     v.GetDuration("server_readTimeout"),
			WriteTimeout:    v.GetDuration("server_writeTimeout"),
			ShutdownTimeout: v.GetDuration("server_shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server_disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetString("database_port"),
			Name:          v.GetString("database_name"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			DisableTLS:    v.GetBool("database_disableTLS"),
			InMemory:      v.GetBool("database_inMemory"),
		},
		Chart: ChartConfig{
			Height:      v.GetFloat64("chart_height"),
			ProgressRad: v.GetFloat64("chart_progressRadius"),
			PieRadius:   v.GetFloat64("chart_pieRadius"),
		},
	}
}

// NewTestConfig returns a Config usable in tests without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Masomo",
		Build:            "test",
		Env:              "TEST",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:8080",
		APIBaseURL:       "http://localhost:8000",
		MaxUploadSize:    1 << 20,
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		ClassMailDomain:  "classes.localhost",
		Server:           ServerConfig{Host: ":0", ShutdownTimeout: time.Second, DisableReqLogs: true},
		Database:         DatabaseConfig{InMemory: true},
		Chart:            ChartConfig{Height: 300, ProgressRad: 45, PieRadius: 100},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s[%s] build=%s debug=%t", c.AppName, c.Env, c.Build, c.Debug)
}
