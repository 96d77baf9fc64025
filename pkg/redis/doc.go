// Package redis connects to a Redis server and exposes it as a registry backend.
//
// The package wraps the go-redis client and adds:
//
//   - Connect, which retries the initial ping using the supplied configuration.
//   - KV, a registry.KV implementation over GET/SET/DEL with a key prefix, so
//     several authenticator profiles can share one database.
//   - Healthcheck, a closure for startup and liveness checks.
//
// Configuration is described by Config whose fields are populated from
// environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := registry.NewKVStore(redis.NewKV(client, cfg.KeyPrefix))
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrFailedToGetValue ...) wrap the underlying
// go-redis errors using errors.Join. A missing key is not an error: Get returns nil.
package redis
