package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta time.Duration

		Server    ServerConfig
		Database  DatabaseConfig
		Scheduler SchedulerConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SchedulerConfig carries the study-session auto-placement knobs.
	// Thresholds and durations are injected into the placement engine so they
	// can be tuned (and tested) without touching control flow.
	SchedulerConfig struct {
		WeekStartDay         time.Weekday
		WeekEndDay           time.Weekday
		WorkingDayStart      time.Duration // offset from midnight
		WorkingDayEnd        time.Duration // offset from midnight
		ShortGapThreshold    time.Duration
		LongGapThreshold     time.Duration
		ShortSessionDuration time.Duration
		LongSessionDuration  time.Duration
		SessionBuffer        time.Duration
		EmptyDayStart        time.Duration // offset from midnight
		DayFullHours         int
		FetchTimeout         time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Ratiba")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3e)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "ratiba")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.user", "ratiba")
	conf.SetDefault("database.password", "ratiba")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTls", true)

	conf.SetDefault("scheduler.weekStartDay", int(time.Monday))
	conf.SetDefault("scheduler.weekEndDay", int(time.Saturday))
	conf.SetDefault("scheduler.workingDayStart", 9*time.Hour)
	conf.SetDefault("scheduler.workingDayEnd", 18*time.Hour)
	conf.SetDefault("scheduler.shortGapThreshold", 2*time.Hour)
	conf.SetDefault("scheduler.longGapThreshold", 4*time.Hour)
	conf.SetDefault("scheduler.shortSessionDuration", time.Hour)
	conf.SetDefault("scheduler.longSessionDuration", 2*time.Hour)
	conf.SetDefault("scheduler.sessionBuffer", time.Hour)
	conf.SetDefault("scheduler.emptyDayStart", 12*time.Hour)
	conf.SetDefault("scheduler.dayFullHours", 8)
	conf.SetDefault("scheduler.fetchTimeout", 10*time.Second)

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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
	conf.AutomaticEnv()

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         testMode,
		WorkDir:          wd,
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTls"),
		},
		Scheduler: SchedulerConfig{
			WeekStartDay:         time.Weekday(conf.GetInt("scheduler.weekStartDay")),
			WeekEndDay:           time.Weekday(conf.GetInt("scheduler.weekEndDay")),
			WorkingDayStart:      conf.GetDuration("scheduler.workingDayStart"),
			WorkingDayEnd:        conf.GetDuration("scheduler.workingDayEnd"),
			ShortGapThreshold:    conf.GetDuration("scheduler.shortGapThreshold"),
			LongGapThreshold:     conf.GetDuration("scheduler.longGapThreshold"),
			ShortSessionDuration: conf.GetDuration("scheduler.shortSessionDuration"),
			LongSessionDuration:  conf.GetDuration("scheduler.longSessionDuration"),
			SessionBuffer:        conf.GetDuration("scheduler.sessionBuffer"),
			EmptyDayStart:        conf.GetDuration("scheduler.emptyDayStart"),
			DayFullHours:         conf.GetInt("scheduler.dayFullHours"),
			FetchTimeout:         conf.GetDuration("scheduler.fetchTimeout"),
		},
	}
}
