package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"medlit-rag-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Transport is the write side of one chat connection. The concrete
// implementation wraps a websocket conn; tests substitute a fake.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// Registry maps session keys to live transports. A connection starts
// under a provisional key and is moved to its declared client id via
// Rekey once the first message arrives.
type Registry struct {
	// Registered sessions map: session key -> transport
	sessions map[string]Transport

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance delivery
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewRegistry(rdb *redis.Client, log logger.ILogger) *Registry {
	return &Registry{
		sessions: make(map[string]Transport),
		rdb:      rdb,
		logger:   log,
	}
}

// Run starts the cross-instance subscriber. Only needed when Redis is
// configured; without it the registry is purely local.
func (r *Registry) Run() {
	if r.rdb != nil {
		go r.subscribeToRedis()
	}
}

// Register binds a transport to a key. An existing transport under the
// same key is closed and replaced; the newest connection wins.
func (r *Registry) Register(key string, t Transport) {
	r.mu.Lock()
	if old, ok := r.sessions[key]; ok && old != t {
		_ = old.Close()
	}
	r.sessions[key] = t
	r.mu.Unlock()

	r.logger.Info("Registry", "Session registered", map[string]interface{}{"key": key})
}

// Rekey moves a session from its provisional key to the declared one.
// The old key must exist; rekeying an unknown session is an error so a
// lost connection is never silently resurrected.
func (r *Registry) Rekey(oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.sessions[oldKey]
	if !ok {
		return fmt.Errorf("no session registered under key %q", oldKey)
	}
	if existing, found := r.sessions[newKey]; found && existing != t {
		_ = existing.Close()
	}
	delete(r.sessions, oldKey)
	r.sessions[newKey] = t

	r.logger.Info("Registry", "Session rekeyed", map[string]interface{}{
		"old_key": oldKey,
		"new_key": newKey,
	})
	return nil
}

// Unregister removes a session. Safe to call twice; the second call is
// a no-op. Removing a key that was already rekeyed away does nothing.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	_, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("Registry", "Session unregistered", map[string]interface{}{"key": key})
	}
}

// Count returns the number of live local sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Send delivers a payload to one session, best effort. A failed write
// means the socket is gone, so the session is dropped rather than
// retried. When the key is not local and Redis is configured the
// payload is published for other instances.
func (r *Registry) Send(key string, data []byte) {
	r.mu.RLock()
	t, localFound := r.sessions[key]
	r.mu.RUnlock()

	if localFound {
		if err := t.Send(data); err != nil {
			r.logger.Warn("Registry", "Write failed, dropping session", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			r.Unregister(key)
			_ = t.Close()
		}
		return
	}

	if r.rdb != nil {
		payload := map[string]interface{}{
			"target_key": key,
			"message":    json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		r.rdb.Publish(context.Background(), "chat_events", jsonPayload)
	}
}

func (r *Registry) subscribeToRedis() {
	// All instances subscribe to "chat_events". When a message arrives,
	// deliver it if the target session lives here, otherwise ignore it.
	ctx := context.Background()
	pubsub := r.rdb.Subscribe(ctx, "chat_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetKey string          `json:"target_key"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		r.mu.RLock()
		t, ok := r.sessions[payload.TargetKey]
		r.mu.RUnlock()

		if ok {
			if err := t.Send(payload.Message); err != nil {
				r.Unregister(payload.TargetKey)
				_ = t.Close()
			}
		}
	}
}
