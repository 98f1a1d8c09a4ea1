package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"modelkit.io/modelkit/logger"
)

// Config registry config
type Config struct {
	// NamingStrategy tables, columns and wire names naming strategy
	NamingStrategy Namer
	// Logger receives definition errors and discriminator fallbacks
	Logger logger.Interface
}

// Registry explicit owner of defined model and table types
type Registry struct {
	namer  Namer
	logger logger.Interface
	types  sync.Map
	tables sync.Map
}

// NewRegistry initialize a registry, zero config uses NamingStrategy{} and logger.Default
func NewRegistry(config Config) *Registry {
	if config.NamingStrategy == nil {
		config.NamingStrategy = NamingStrategy{}
	}
	if config.Logger == nil {
		config.Logger = logger.Default
	}
	return &Registry{namer: config.NamingStrategy, logger: config.Logger}
}

// Logger registry logger
func (r *Registry) Logger() logger.Interface {
	return r.logger
}

// Namer registry naming strategy
func (r *Registry) Namer() Namer {
	return r.namer
}

// Define builds and registers a model type. Schema shape problems are reported here,
// never on first use.
func (r *Registry) Define(name string, fields []*Field, opts ...Option) (*ModelType, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	mt, err := r.buildModelType(name, fields, o)
	if err == nil {
		err = r.register(mt)
	}
	if err != nil {
		r.logger.Error(context.Background(), "%v", err)
		return nil, err
	}
	return mt, nil
}

// MustDefine like Define but panics on error
func (r *Registry) MustDefine(name string, fields []*Field, opts ...Option) *ModelType {
	mt, err := r.Define(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return mt
}

func (r *Registry) register(mt *ModelType) error {
	if _, loaded := r.types.LoadOrStore(mt.Name, mt); loaded {
		return fmt.Errorf("%w: type %s", ErrRegistered, mt.Name)
	}
	return nil
}

// Lookup registered model type by name
func (r *Registry) Lookup(name string) (*ModelType, bool) {
	if v, ok := r.types.Load(name); ok {
		return v.(*ModelType), true
	}
	return nil, false
}

// Table registered table type by model name
func (r *Registry) Table(name string) (*TableType, bool) {
	if v, ok := r.tables.Load(name); ok {
		return v.(*TableType), true
	}
	return nil, false
}

// Types registered model types sorted by name
func (r *Registry) Types() []*ModelType {
	var types []*ModelType
	r.types.Range(func(_, v interface{}) bool {
		types = append(types, v.(*ModelType))
		return true
	})
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

func loggerOf(mt *ModelType) logger.Interface {
	if mt.registry == nil {
		return logger.Discard
	}
	return mt.registry.logger
}
