package config

import (
	"github.com/JaimeStill/mod-depot/pkg/database"
	"github.com/JaimeStill/mod-depot/pkg/storage"
)

var storageEnv = &storage.Env{
	Backend:       "STORAGE_BACKEND",
	BasePath:      "STORAGE_BASE_PATH",
	PublicPrefix:  "STORAGE_PUBLIC_PREFIX",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
	S3Bucket:      "STORAGE_S3_BUCKET",
	S3Region:      "STORAGE_S3_REGION",
	S3Prefix:      "STORAGE_S3_PREFIX",
	S3Endpoint:    "STORAGE_S3_ENDPOINT",
	S3AccessKey:   "STORAGE_S3_ACCESS_KEY",
	S3SecretKey:   "STORAGE_S3_SECRET_KEY",
	S3PathStyle:   "STORAGE_S3_USE_PATH_STYLE",
}

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSL_MODE",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}
