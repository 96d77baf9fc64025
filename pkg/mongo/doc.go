// Package mongo stores the credential registry in MongoDB.
//
// New connects with retry, NewCollection resolves the configured database and
// collection, and KV implements registry.KV with one document per key. Writes are
// upserts, so the collection needs no setup beyond existing.
//
// # Usage
//
//	coll, err := mongo.NewCollection(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer coll.Database().Client().Disconnect(context.Background())
//
//	store := registry.NewKVStore(mongo.NewKV(coll))
//
// # Configuration
//
// Config is populated from MONGODB_* environment variables via
// github.com/caarlos0/env.
//
// # Error Handling
//
// Connection and storage failures are joined with package sentinels
// (ErrFailedToConnectToMongo, ErrFailedToGetValue ...). A missing key is not an
// error: Get returns nil.
package mongo
