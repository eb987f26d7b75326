package types

type Config struct {
	Environment      string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort       uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	ReadTimeoutSec   uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec  uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Token signing
	// openssl rand -base64 48
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"ecoreport"`
	JWTKeyID  string `envconfig:"JWT_KEY_ID" default:"primary"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Uploads
	S3BucketName       string `envconfig:"S3_BUCKET_NAME" default:"ecoreport-evidence"`
	UploadURLTTLMin    uint   `envconfig:"UPLOAD_URL_TTL_MIN" default:"15"`
	ReportImpactPoints int    `envconfig:"REPORT_IMPACT_POINTS" default:"10"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
