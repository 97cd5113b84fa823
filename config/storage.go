package config

// StorageConfig selects the backend holding uploaded PDFs and conversion results.
type StorageConfig struct {
	Type     string      `yaml:"type"`
	LocalDir string      `yaml:"localDir"`
	S3       AWSConfig   `yaml:"s3"`
	Minio    MinioConfig `yaml:"minio"`
	GCS      GCSConfig   `yaml:"gcs"`
}

type AWSConfig struct {
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
}

type MinioConfig struct {
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	Endpoint   string `yaml:"endpoint"`
	UseSSL     bool   `yaml:"useSSL"`
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucketName"`
}

type GCSConfig struct {
	BucketName string `yaml:"bucketName"`
}

func (s *StorageConfig) applyEnv() {
	envString(&s.Type, "STORAGE_TYPE")
	envString(&s.LocalDir, "UPLOAD_DIR")

	envString(&s.S3.BucketName, "AWS_S3_BUCKET_NAME")
	s.S3.applyEnv("AWS")

	envString(&s.Minio.AccessKey, "MINIO_ACCESS_KEY")
	envString(&s.Minio.SecretKey, "MINIO_SECRET_KEY")
	envString(&s.Minio.Endpoint, "MINIO_ENDPOINT")
	envBool(&s.Minio.UseSSL, "MINIO_USE_SSL")
	envString(&s.Minio.Region, "MINIO_REGION")
	envString(&s.Minio.BucketName, "MINIO_BUCKET_NAME")

	envString(&s.GCS.BucketName, "GCS_BUCKET_NAME")
}

// applyEnv reads <prefix>_REGION, <prefix>_ENDPOINT, <prefix>_ACCESS_KEY and <prefix>_SECRET_KEY.
func (a *AWSConfig) applyEnv(prefix string) {
	envString(&a.Region, prefix+"_REGION")
	envString(&a.Endpoint, prefix+"_ENDPOINT")
	envString(&a.AccessKey, prefix+"_ACCESS_KEY")
	envString(&a.SecretKey, prefix+"_SECRET_KEY")
}
