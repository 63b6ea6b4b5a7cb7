package config

type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

func (s *S3Config) applyEnv() {
	setString(&s.Region, "AWS_REGION")
	setString(&s.Endpoint, "AWS_ENDPOINT")
	setString(&s.AccessKey, "AWS_ACCESS_KEY")
	setString(&s.SecretKey, "AWS_SECRET_KEY")
}
