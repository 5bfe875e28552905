package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Study    StudyConfig    `mapstructure:"study"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings needed to verify request tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// StudyConfig tunes the SM-2 scheduler. Zero values mean "use the standard
// SM-2 constants".
type StudyConfig struct {
	MinEaseFactor  float64 `mapstructure:"min_ease_factor" validate:"omitempty,gte=1"`
	FirstInterval  int     `mapstructure:"first_interval" validate:"omitempty,gte=1"`
	SecondInterval int     `mapstructure:"second_interval" validate:"omitempty,gte=1"`
}
