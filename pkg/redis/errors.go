package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrFailedToGetValue             = errors.New("failed to read value from redis")
	ErrFailedToSetValue             = errors.New("failed to write value to redis")
	ErrFailedToDeleteValue          = errors.New("failed to delete value from redis")
)
