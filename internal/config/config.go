package config

import (
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración por variables de entorno.
type Config struct {
	Port      int    `env:"PORT,default=8080"`
	Env       string `env:"APP_ENV,default=development"`
	UploadDir string `env:"UPLOAD_DIR,default=uploads"`

	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     uint   `env:"DB_PORT,default=5432"`
	DBName     string `env:"DB_NAME,default=backoffice"`
	DBUser     string `env:"DB_USERNAME,default=postgres"`
	DBPassword string `env:"DB_PASSWORD,default=postgres"`

	JWTSecret   string `env:"JWT_SECRET,required"`
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:5173"`
}

// Load lee .env (si existe) y decodifica la configuración.
func Load() (*Config, error) {
	// .env es opcional; en producción las variables vienen del entorno.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
