package config

import (
	"log/slog"
	"os"
	"strings"
)

func Load() App {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),

		UploadDriver: getenv("UPLOAD_DRIVER", "fs"),
		UploadDir:    getenv("UPLOAD_DIR", "uploads"),

		S3Bucket:    os.Getenv("UPLOAD_S3_BUCKET"),
		S3Region:    os.Getenv("UPLOAD_S3_REGION"),
		S3Endpoint:  os.Getenv("UPLOAD_S3_ENDPOINT"),
		S3AccessKey: os.Getenv("UPLOAD_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("UPLOAD_S3_SECRET_KEY"),
		S3PathStyle: strings.EqualFold(os.Getenv("UPLOAD_S3_PATH_STYLE"), "true"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
