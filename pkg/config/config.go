package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo).
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	Seed  SeedConfig
	Store StoreConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SeedConfig ubicación y parámetros de los dos feeds de arranque.
// ItemsURL y RequestsURL aceptan URL http(s) o ruta de archivo local; vacío
// significa "sin feed" (el kardex arranca en cero, degradación admitida).
type SeedConfig struct {
	ItemsURL         string
	RequestsURL      string
	DefaultWarehouse string
	Timeout          time.Duration // por fetch; solo aplica a URLs remotas
	RawPrefixes      []string      // prefijos de código que clasifican RAW
	FinishedPrefixes []string      // prefijos de código que clasifican FINISHED
}

// StoreConfig configuración del almacén de estado (SQLite embebido).
type StoreConfig struct {
	Path     string // ruta del archivo .db; vacío = sin persistencia
	StateKey string // clave fija del slot de estado
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde
// archivo). Las env vars tienen prioridad. Nombres esperados: APP_ENV,
// HTTP_PORT, SEED_ITEMS_URL, STORE_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "kardex-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Seed: SeedConfig{
			ItemsURL:         getString(v, "SEED_ITEMS_URL", ""),
			RequestsURL:      getString(v, "SEED_REQUESTS_URL", ""),
			DefaultWarehouse: getString(v, "SEED_DEFAULT_WAREHOUSE", "Bodega Principal"),
			Timeout:          time.Duration(getInt(v, "SEED_TIMEOUT_SECONDS", 10)) * time.Second,
			RawPrefixes:      getList(v, "SEED_RAW_PREFIXES", []string{"RM-", "MP-"}),
			FinishedPrefixes: getList(v, "SEED_FINISHED_PREFIXES", []string{"FG-", "PT-"}),
		},
		Store: StoreConfig{
			Path:     getString(v, "STORE_PATH", "kardex.db"),
			StateKey: getString(v, "STORE_STATE_KEY", "kardex-state"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getList lee una lista separada por comas ("RM-,MP-").
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.Split(v.GetString(key), ",")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
