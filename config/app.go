package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET" default:"local_dev_secret"`
	Env         string `env:"APP_ENV" default:"dev"`

	UploadDriver string `env:"UPLOAD_DRIVER" default:"fs"`
	UploadDir    string `env:"UPLOAD_DIR" default:"uploads"`

	S3Bucket    string `env:"UPLOAD_S3_BUCKET"`
	S3Region    string `env:"UPLOAD_S3_REGION"`
	S3Endpoint  string `env:"UPLOAD_S3_ENDPOINT"`
	S3AccessKey string `env:"UPLOAD_S3_ACCESS_KEY"`
	S3SecretKey string `env:"UPLOAD_S3_SECRET_KEY"`
	S3PathStyle bool   `env:"UPLOAD_S3_PATH_STYLE"`
}
