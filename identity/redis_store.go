package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"modelkit.io/modelkit/schema"
)

// Store resolves user records by id
type Store interface {
	FindUser(ctx context.Context, id string) (*schema.Instance, error)
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string

	// Password is the Redis password (empty if no auth)
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix is the prefix for all user keys
	KeyPrefix string
}

// RedisStore keeps user records as wire JSON under KeyPrefix+id
type RedisStore struct {
	client   *redis.Client
	prefix   string
	userType *schema.ModelType
}

// NewRedisStore creates a store connected to config.Addr
func NewRedisStore(config RedisConfig, userType *schema.ModelType) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewRedisStoreFromClient(client, config.KeyPrefix, userType)
}

// NewRedisStoreFromClient creates a store from an existing client
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, userType *schema.ModelType) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "modelkit:user:"
	}
	return &RedisStore{client: client, prefix: keyPrefix, userType: userType}
}

// Save stores user under id
func (s *RedisStore) Save(ctx context.Context, id string, user *schema.Instance) error {
	if ok, err := schema.IsInstance(user, s.userType); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s is not a %s", schema.ErrInvalidData, user.Type().Name, s.userType.Name)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", id, err)
	}
	return s.client.Set(ctx, s.prefix+id, data, 0).Err()
}

// FindUser loads and deserializes the user stored under id
func (s *RedisStore) FindUser(ctx context.Context, id string) (*schema.Instance, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	} else if err != nil {
		return nil, err
	}

	var wire map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return schema.Deserialize(s.userType, wire)
}

// Delete removes the user stored under id
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
