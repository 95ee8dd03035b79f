package nodetable

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the node table as a single Redis hash, one field
// per node_id, so a fleet of gateways sharing one Redis instance can
// converge on the same table.
type RedisStore struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

// NewRedisStore returns a Store backed by the Redis hash at key.
func NewRedisStore(addr, password string, db int, key string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, key: key, ctx: context.Background()}
}

func (s *RedisStore) Load() (map[uint16]LongAddress, error) {
	table := make(map[uint16]LongAddress)

	fields, err := s.client.HGetAll(s.ctx, s.key).Result()
	if err != nil {
		return table, fmt.Errorf("load node table hash %s: %w", s.key, err)
	}

	for idStr, hexAddr := range fields {
		id, err := strconv.ParseUint(idStr, 10, 16)
		if err != nil {
			continue
		}
		raw, err := hex.DecodeString(hexAddr)
		if err != nil || len(raw) != 8 {
			continue
		}
		var addr LongAddress
		copy(addr[:], raw)
		table[uint16(id)] = addr
	}
	return table, nil
}

func (s *RedisStore) Save(table map[uint16]LongAddress) error {
	pipe := s.client.TxPipeline()
	pipe.Del(s.ctx, s.key)
	for id, addr := range table {
		pipe.HSet(s.ctx, s.key, strconv.FormatUint(uint64(id), 10), hex.EncodeToString(addr[:]))
	}
	_, err := pipe.Exec(s.ctx)
	if err != nil {
		return fmt.Errorf("save node table hash %s: %w", s.key, err)
	}
	return nil
}
