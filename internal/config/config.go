package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration loaded from env.
type Config struct {
	Port             string
	ProjectID        string
	AdminUID         string
	DomainName       string
	TimeZone         *time.Location
	MaxResults       int
	MinKeywordLength int
	ValkeyAddr       string
	ValkeyPassword   string
	DigestSecret     []byte
	Env              string
}

// Defaults tuned for development; raise MAX_RESULTS for production.
const (
	defaultMaxResults = 10
	// Minimum keyword bytes; 4 is the widest UTF-8 character, so 5 admits
	// at most one multibyte character below the threshold.
	defaultMinKeywordLength = 5
	defaultTimeZone         = "Asia/Seoul"
)

func FromEnv() Config {
	c := Config{
		Port:             getEnv("PORT", "8080"),
		ProjectID:        MustHave("PROJECT_ID"),
		AdminUID:         MustHave("ADMIN_UID"),
		DomainName:       trimScheme(os.Getenv("DOMAIN_NAME")),
		MaxResults:       getEnvInt("MAX_RESULTS", defaultMaxResults),
		MinKeywordLength: getEnvInt("MIN_KEYWORD_LENGTH", defaultMinKeywordLength),
		ValkeyAddr:       os.Getenv("VALKEY_ADDR"),
		ValkeyPassword:   os.Getenv("VALKEY_PASSWORD"),
		Env:              getEnv("ENV", "development"),
	}
	tzName := getEnv("TIME_ZONE", defaultTimeZone)
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("invalid TIME_ZONE %q: %v", tzName, err)
	}
	c.TimeZone = tz
	// Author digests stay stable across restarts only when the secret is
	// pinned; otherwise generate an ephemeral per-process key.
	if s := os.Getenv("AUTHOR_DIGEST_SECRET"); s != "" {
		c.DigestSecret = []byte(s)
	} else {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err == nil {
			c.DigestSecret = buf
		} else {
			log.Printf("warning: failed to generate digest secret: %v", err)
			c.DigestSecret = []byte("insecure-default")
		}
	}
	return c
}

// CORSOrigins builds the allow-list: the configured domain over both
// schemes plus local development origins.
func (c Config) CORSOrigins() []string {
	origins := []string{"http://localhost", "http://localhost:8000", "http://localhost:8080"}
	if c.DomainName != "" {
		origins = append([]string{"https://" + c.DomainName, "http://" + c.DomainName}, origins...)
	}
	return origins
}

func trimScheme(domain string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(domain) > len(prefix) && domain[:len(prefix)] == prefix {
			return domain[len(prefix):]
		}
	}
	return domain
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Fatalf("invalid %s %q", key, v)
	}
	return n
}

func MustHave(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env %s", key)
	}
	return v
}
