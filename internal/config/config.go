package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	JWTSecret         string `env:"JWT_SECRET,required"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`

	RedisAddr string `env:"REDIS_ADDR"`

	StorageBucket   string `env:"STORAGE_BUCKET"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	MailFrom      string `env:"MAIL_FROM"`
	OperatorEmail string `env:"OPERATOR_EMAIL"`

	// UID of the account support threads are addressed to.
	SupportUID string `env:"SUPPORT_UID" envDefault:"support"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
