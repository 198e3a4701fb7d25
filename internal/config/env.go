package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Env struct {
	AppAddr        string
	GinMode        string
	StoreDriver    string
	DBDSN          string
	DBAutoMigrate  bool
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	PaymentLink    string
	AdminName      string
	AdminPhone     string
	AdminPassword  string
}

func LoadEnv() Env {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env could not be loaded: %v", err)
	}

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if driver != StoreMemory {
		driver = StoreMySQL
	}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/hostel?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
		log.Println("warning: JWT_SECRET not set, using development secret")
	}

	ttl := 24 * time.Hour
	if raw := strings.TrimSpace(os.Getenv("JWT_TTL_HOURS")); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h > 0 {
			ttl = time.Duration(h) * time.Hour
		}
	}

	origins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	adminName := strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	if adminName == "" {
		adminName = "Admin"
	}

	autoMigrate, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_AUTO_MIGRATE")))

	return Env{
		AppAddr:        appAddr,
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		StoreDriver:    driver,
		DBDSN:          dsn,
		DBAutoMigrate:  autoMigrate,
		JWTSecret:      secret,
		JWTTTL:         ttl,
		AllowedOrigins: origins,
		PaymentLink:    strings.TrimSpace(os.Getenv("PAYMENT_LINK")),
		AdminName:      adminName,
		AdminPhone:     strings.TrimSpace(os.Getenv("ADMIN_PHONE")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
}
