package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	DiscordClientID               string        `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string        `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string        `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string        `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	StaffRole                     string        `mapstructure:"STAFF_ROLE"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	FrontendURL                   string        `mapstructure:"FRONTEND_URL"`
	AllowedOrigins                []string      `mapstructure:"ALLOWED_ORIGINS"`
	EnableCORS                    bool          `mapstructure:"ENABLE_CORS"`
	SheetsURL                     string        `mapstructure:"SHEETS_URL"`
	SheetsTimeout                 time.Duration `mapstructure:"SHEETS_TIMEOUT"`
	SheetsSyncSchedule            string        `mapstructure:"SHEETS_SYNC_SCHEDULE"`
	SheetsMaxAttempts             int           `mapstructure:"SHEETS_MAX_ATTEMPTS"`
	Timezone                      string        `mapstructure:"TIMEZONE"`
	DiscountRateLimit             float64       `mapstructure:"DISCOUNT_RATE_LIMIT"`
	DiscountRateBurst             int           `mapstructure:"DISCOUNT_RATE_BURST"`
	LogLevel                      string        `mapstructure:"LOG_LEVEL"`
	LogFormat                     string        `mapstructure:"LOG_FORMAT"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "snow_reservation.db")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("STAFF_ROLE", "rental-staff")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	viper.SetDefault("ENABLE_CORS", true)
	viper.SetDefault("SHEETS_TIMEOUT", 10*time.Second)
	viper.SetDefault("SHEETS_SYNC_SCHEDULE", "@every 5m")
	viper.SetDefault("SHEETS_MAX_ATTEMPTS", 10)
	viper.SetDefault("TIMEZONE", "Asia/Tokyo")
	viper.SetDefault("DISCOUNT_RATE_LIMIT", 1.0)
	viper.SetDefault("DISCOUNT_RATE_BURST", 5)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_GUILD_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("SHEETS_URL")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config")
	}

	return &config
}

// Location is the zone whose calendar date counts as "today" for discount
// validity and reservation numbers. Unknown zones fall back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("Unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}
