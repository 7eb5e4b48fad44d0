package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN      string
	FetchInterval int // minutes
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	interval := 15
	if v := os.Getenv("FETCH_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("bad env FETCH_INTERVAL=%q", v)
		}
		interval = n
	}
	return Config{
		MySQLDSN:      getenv("MYSQL_DSN", "verity:verity@tcp(127.0.0.1:3306)/verity"),
		FetchInterval: interval,
	}
}
