package mongo

import "errors"

var (
	ErrEmptyConnectionURL     = errors.New("empty mongo connection URL")
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrFailedToGetValue       = errors.New("failed to read value from mongo")
	ErrFailedToSetValue       = errors.New("failed to write value to mongo")
	ErrFailedToDeleteValue    = errors.New("failed to delete value from mongo")
)
