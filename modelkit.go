package modelkit

import (
	"modelkit.io/modelkit/logger"
	"modelkit.io/modelkit/schema"
)

// Config modelkit config
type Config struct {
	// NamingStrategy tables, columns and wire names naming strategy
	NamingStrategy schema.Namer
	// Logger receives definition errors and discriminator fallbacks
	Logger logger.Interface
}

// New initialize a schema registry based on config
func New(config *Config) *schema.Registry {
	if config == nil {
		config = &Config{}
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	return schema.NewRegistry(schema.Config{
		NamingStrategy: config.NamingStrategy,
		Logger:         config.Logger,
	})
}
