package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration lue depuis l'environnement.
// Elle est construite une seule fois dans main puis injectée.
type Config struct {
	Port          string
	JWTSecret     string
	SessionSecret string
	CookieSecure  bool
	CORSOrigins   []string

	ScyllaHosts      []string
	ScyllaKeyspace   string
	ScyllaUsername   string
	ScyllaPassword   string
	ScyllaSSLEnabled bool
	ScyllaCACertPath string

	RedisHost     string
	RedisPassword string

	StorageDriver  string // "minio" ou "s3"
	ProductsBucket string
	AvatarsBucket  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	PublicBaseURL  string // base des URLs publiques des images
	S3Region       string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	CompanyName string
	CompanyIBAN string
	CompanyBIC  string
}

// Load charge .env si présent puis lit les variables du système.
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit la configuration sans toucher au fichier .env.
func FromEnv() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),

		ScyllaHosts:      splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace:   getenv("SCYLLA_KEYSPACE", "perfumeria"),
		ScyllaUsername:   os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword:   os.Getenv("SCYLLA_PASSWORD"),
		ScyllaSSLEnabled: strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true",
		ScyllaCACertPath: os.Getenv("SCYLLA_SSL_CA_PATH"),

		RedisHost:     getenv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		StorageDriver:  strings.ToLower(getenv("STORAGE_DRIVER", "minio")),
		ProductsBucket: getenv("PRODUCTS_BUCKET", "product-images"),
		AvatarsBucket:  getenv("AVATARS_BUCKET", "avatars"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PublicBaseURL:  os.Getenv("STORAGE_PUBLIC_URL"),
		S3Region:       getenv("AWS_REGION", "us-east-1"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "noreply@perfumeria.local"),

		CompanyName: getenv("COMPANY_NAME", "Perfumeria"),
		CompanyIBAN: os.Getenv("COMPANY_IBAN"),
		CompanyBIC:  os.Getenv("COMPANY_BIC"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
