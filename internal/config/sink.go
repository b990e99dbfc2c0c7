package config

// Submission sink types accepted in sink.types.
const (
	SinkLog    = "log"
	SinkSQLite = "sqlite"
	SinkFS     = "fs"
	SinkS3     = "s3"
)

const (
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
	EnvConfigPath        = "CONFIG_PATH"
)
