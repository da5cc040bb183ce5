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

// Config holds every runtime setting. Values are resolved from defaults,
// an optional config/.env.<env> file and environment variables prefixed
// with the current ENV (DEV, TEST, QA, PROD).
type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	Build    string
	AppName  string
	WorkDir  string

	SecretKey       string
	FrontendBaseURL string
	DefaultFromName string
	DefaultFromAddr string
	SendgridApiKey  string
	RollbarToken    string

	Server struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Store struct {
		// Backend selects the document store implementation: inmem | redis | postgres
		Backend  string
		CacheDir string

		Redis struct {
			Addr     string
			Password string
			DB       int
		}

		Database struct {
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
	}

	TextGen struct {
		ApiKey  string
		Model   string
		Timeout time.Duration
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// DatabaseAddress returns the host:port of the configured SQL database.
func (c *Config) DatabaseAddress() string {
	return c.Store.Database.Host + ":" + c.Store.Database.Port
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "ShikshaSetu")
	v.SetDefault("secretKey", "x6k2@wer)setu$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "ShikshaSetu")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("storeBackend", "inmem")
	v.SetDefault("storeCacheDir", "")
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "shikshasetu")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("textgenApiKey", "")
	v.SetDefault("textgenModel", "gemini-1.5-flash")
	v.SetDefault("textgenTimeout", 30*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		WorkDir:         wd,
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromEmail"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")

	conf.Store.Backend = v.GetString("storeBackend")
	conf.Store.CacheDir = v.GetString("storeCacheDir")
	if conf.Store.CacheDir == "" {
		conf.Store.CacheDir = filepath.Join(wd, ".cache")
	}
	conf.Store.Redis.Addr = v.GetString("redisAddr")
	conf.Store.Redis.Password = v.GetString("redisPassword")
	conf.Store.Redis.DB = v.GetInt("redisDB")
	conf.Store.Database.Engine = v.GetString("dbEngine")
	conf.Store.Database.Name = v.GetString("dbName")
	conf.Store.Database.Host = v.GetString("dbHost")
	conf.Store.Database.Port = v.GetString("dbPort")
	conf.Store.Database.User = v.GetString("dbUser")
	conf.Store.Database.Password = v.GetString("dbPassword")
	conf.Store.Database.AdminUser = v.GetString("dbAdminUser")
	conf.Store.Database.AdminPassword = v.GetString("dbAdminPassword")
	conf.Store.Database.DisableTLS = v.GetBool("dbDisableTLS")

	conf.TextGen.ApiKey = v.GetString("textgenApiKey")
	conf.TextGen.Model = v.GetString("textgenModel")
	conf.TextGen.Timeout = v.GetDuration("textgenTimeout")
	return conf
}
