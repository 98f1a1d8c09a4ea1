package modelkit

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"modelkit.io/modelkit/logger"
	"modelkit.io/modelkit/schema"
)

// FileConfig settings read by LoadConfig
type FileConfig struct {
	Log    LogConfig    `mapstructure:"log"`
	Naming NamingConfig `mapstructure:"naming"`
}

// LogConfig logger settings
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Backend  string `mapstructure:"backend"`
	Colorful bool   `mapstructure:"colorful"`
}

// NamingConfig naming strategy settings
type NamingConfig struct {
	TablePrefix    string `mapstructure:"table_prefix"`
	SingularTable  bool   `mapstructure:"singular_table"`
	SnakeColumns   bool   `mapstructure:"snake_columns"`
	CamelWireNames bool   `mapstructure:"camel_wire_names"`
}

// LoadConfig loads path (modelkit.yaml in the working directory when empty) and
// MODELKIT_* environment variables into a Config. A missing default file is not an error.
func LoadConfig(path string) (*Config, *FileConfig, error) {
	v := viper.New()

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.backend", "std")
	v.SetDefault("log.colorful", true)
	v.SetDefault("naming.table_prefix", "")
	v.SetDefault("naming.singular_table", false)
	v.SetDefault("naming.snake_columns", false)
	v.SetDefault("naming.camel_wire_names", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("modelkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MODELKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var fileConfig FileConfig
	if err := v.Unmarshal(&fileConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	log, err := fileConfig.Log.Build()
	if err != nil {
		return nil, nil, err
	}

	return &Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:    fileConfig.Naming.TablePrefix,
			SingularTable:  fileConfig.Naming.SingularTable,
			SnakeColumns:   fileConfig.Naming.SnakeColumns,
			CamelWireNames: fileConfig.Naming.CamelWireNames,
		},
		Logger: log,
	}, &fileConfig, nil
}

// Build creates the configured logger: std, zap, zerolog or logrus
func (c LogConfig) Build() (logger.Interface, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	config := logger.Config{LogLevel: level, Colorful: c.Colorful}

	switch strings.ToLower(c.Backend) {
	case "", "std":
		return logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), config), nil
	case "zap":
		return logger.NewZapLoggerWithConfig(config), nil
	case "zerolog":
		return logger.NewZerologConsoleLogger(config), nil
	case "logrus":
		logrusLogger := logrus.New()
		logrusLogger.SetOutput(os.Stderr)
		logrusLogger.SetFormatter(&logrus.TextFormatter{DisableColors: !c.Colorful})
		return logger.NewLogrusLogger(logrusLogger, config), nil
	}
	return nil, fmt.Errorf("unknown log backend %q", c.Backend)
}
