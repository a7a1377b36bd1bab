package interceptor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
)

const (
	IdempotencyKeyHeader = "idempotency-key"
	idempotencyPrefix    = "idempotency:"
	processingMarker     = "PROCESSING"
	// Bounds how long a crashed request keeps its key locked.
	processingTTL = time.Minute
)

var ErrRequestInProgress = errors.New("a request with this idempotency key is in progress")

// IdempotencyStore remembers responses of state-changing calls by key.
type IdempotencyStore interface {
	// Reserve claims key for a new request. It returns the stored response when
	// the key already completed, or ErrRequestInProgress while another request
	// holds it.
	Reserve(ctx context.Context, key string) ([]byte, error)
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type IdempotencyInterceptor struct {
	store   IdempotencyStore
	ttl     time.Duration
	methods map[string]bool
}

func NewIdempotencyInterceptor(store IdempotencyStore, ttl time.Duration) *IdempotencyInterceptor {
	return &IdempotencyInterceptor{store: store, ttl: ttl, methods: config.IdempotentMethods}
}

// Unary replays the stored response when a client retries an idempotent
// method with the same idempotency-key header. Failed calls release the key.
func (i *IdempotencyInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !i.methods[info.FullMethod] {
			return handler(ctx, req)
		}
		clientKey := headerValue(ctx, IdempotencyKeyHeader)
		if clientKey == "" {
			return handler(ctx, req)
		}
		key := idempotencyPrefix + info.FullMethod + ":" + clientKey

		cached, err := i.store.Reserve(ctx, key)
		switch {
		case errors.Is(err, ErrRequestInProgress):
			return nil, status.Error(codes.Aborted, err.Error())
		case err != nil:
			logger.Warn("Idempotency store unavailable, processing without it", "method", info.FullMethod, "error", err)
			return handler(ctx, req)
		case cached != nil:
			resp := new(structpb.Struct)
			if err := proto.Unmarshal(cached, resp); err != nil {
				return nil, status.Error(codes.Internal, "stored response is unreadable")
			}
			metrics.IdempotentReplays.WithLabelValues(info.FullMethod).Inc()
			return resp, nil
		}

		resp, err := handler(ctx, req)
		if err != nil {
			if relErr := i.store.Release(context.WithoutCancel(ctx), key); relErr != nil {
				logger.Warn("Failed to release idempotency key", "key", key, "error", relErr)
			}
			return nil, err
		}

		if msg, ok := resp.(proto.Message); ok {
			if data, mErr := proto.Marshal(msg); mErr == nil {
				if cErr := i.store.Complete(context.WithoutCancel(ctx), key, data, i.ttl); cErr != nil {
					logger.Warn("Failed to store idempotent response", "key", key, "error", cErr)
				}
			}
		}
		return resp, nil
	}
}

func headerValue(ctx context.Context, name string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

type redisIdempotencyStore struct {
	client redis.Cmdable
}

func NewRedisIdempotencyStore(client redis.Cmdable) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

func (s *redisIdempotencyStore) Reserve(ctx context.Context, key string) ([]byte, error) {
	acquired, err := s.client.SetNX(ctx, key, processingMarker, processingTTL).Result()
	if err != nil {
		return nil, err
	}
	if acquired {
		return nil, nil
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) || string(val) == processingMarker {
		return nil, ErrRequestInProgress
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, response, ttl).Err()
}

func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type idempotencyEntry struct {
	response []byte
	done     bool
	expires  time.Time
}

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	now     func() time.Time
}

func NewMemoryIdempotencyStore() IdempotencyStore {
	return &memoryIdempotencyStore{entries: make(map[string]idempotencyEntry), now: time.Now}
}

func (s *memoryIdempotencyStore) Reserve(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && e.expires.After(now) {
		if !e.done {
			return nil, ErrRequestInProgress
		}
		if e.response == nil {
			return []byte{}, nil
		}
		return e.response, nil
	}
	s.entries[key] = idempotencyEntry{expires: now.Add(processingTTL)}
	return nil, nil
}

func (s *memoryIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = idempotencyEntry{response: response, done: true, expires: s.now().Add(ttl)}
	return nil
}

func (s *memoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
