package config

import "strings"

type StorageDriver string

const (
	StorageMemory StorageDriver = "memory"
	StorageFile   StorageDriver = "file"
	StorageSQLite StorageDriver = "sqlite"
	StorageRedis  StorageDriver = "redis"
)

type StorageConfig interface {
	GetStorageDriver() StorageDriver
	GetStoragePath() string
	GetRedisAddr() string
	GetStorageNamespace() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageDriver() StorageDriver {
	switch d := StorageDriver(strings.ToLower(GetEnv("STORAGE_DRIVER", string(StorageFile)))); d {
	case StorageMemory, StorageFile, StorageSQLite, StorageRedis:
		return d
	default:
		return StorageFile
	}
}

// GetStoragePath is the file (file driver) or database path (sqlite driver).
func (s Storage) GetStoragePath() string {
	if s.GetStorageDriver() == StorageSQLite {
		return GetEnv("STORAGE_PATH", "./data/session.db")
	}
	return GetEnv("STORAGE_PATH", "./data/session.json")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

// GetStorageNamespace prefixes redis keys so several profiles can share one server.
func (Storage) GetStorageNamespace() string {
	return GetEnv("STORAGE_NAMESPACE", "crm")
}
