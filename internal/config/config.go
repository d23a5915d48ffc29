package config

import "os"

// Config carries everything the storefront needs from the environment.
// Secrets (gateway key secret, JWT secret) stay server-side only.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	// payment gateway (Razorpay-compatible REST API)
	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string

	// commerce backend (order creation + catalog)
	CommerceBaseURL string
	CommerceToken   string

	// shipping carrier (rate lookup)
	CarrierBaseURL  string
	CarrierEmail    string
	CarrierPassword string

	Currency        string
	MinorUnitFactor int32

	// pending-settlement store backend: "postgres" (default) or "redis"
	PendingStore string
	RedisURL     string
}

func Load() Config {
	return Config{
		Addr:        getEnv("STOREFRONT_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		GatewayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		CommerceBaseURL: os.Getenv("SHOPIFY_STORE_URL"),
		CommerceToken:   os.Getenv("SHOPIFY_ACCESS_TOKEN"),

		CarrierBaseURL:  getEnv("SHIPROCKET_BASE_URL", "https://apiv2.shiprocket.in"),
		CarrierEmail:    os.Getenv("SHIPROCKET_EMAIL"),
		CarrierPassword: os.Getenv("SHIPROCKET_PASSWORD"),

		Currency:        getEnv("STORE_CURRENCY", "INR"),
		MinorUnitFactor: 100,

		PendingStore: getEnv("PENDING_STORE", "postgres"),
		RedisURL:     os.Getenv("REDIS_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
