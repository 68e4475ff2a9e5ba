// Package seed carga los dos feeds tabulares de arranque del kardex: el
// maestro de artículos y las solicitudes de material pendientes. Ambos son
// CSV con fila de encabezado; las columnas se identifican por coincidencia de
// substring sin distinguir mayúsculas, así que un feed con columnas
// reordenadas sigue siendo válido.
//
// Política de fallo: cualquier feed ausente, vacío o malformado degrada a
// resultado vacío. El arranque nunca falla por el seed.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// Config parámetros del loader (ver config.SeedConfig).
type Config struct {
	ItemsURL         string
	RequestsURL      string
	DefaultWarehouse string
	Timeout          time.Duration
	RawPrefixes      []string
	FinishedPrefixes []string
}

// Result es la salida normalizada del seed, lista para Initialize:
// el maestro de artículos, los balances de apertura (negativos: cada solicitud
// pendiente modela material ya comprometido que consumió stock) y los asientos
// INIT sintéticos correspondientes.
type Result struct {
	Items           []entity.Item
	OpeningBalances map[string]entity.Balance
	OpeningLedger   []entity.Entry
}

// Loader obtiene y parsea los feeds.
type Loader struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewLoader construye el loader. log puede ser nil.
func NewLoader(cfg Config, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Load obtiene ambos feeds en paralelo (no hay dependencia de orden entre
// ellos) y devuelve el resultado normalizado. Nunca falla: cada feed que no se
// pueda obtener o parsear se registra como warning y aporta vacío.
func (l *Loader) Load(ctx context.Context) Result {
	res := Result{
		Items:           []entity.Item{},
		OpeningBalances: map[string]entity.Balance{},
		OpeningLedger:   []entity.Entry{},
	}

	var itemsRaw, requestsRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.fetch(gctx, l.cfg.ItemsURL)
		if err != nil {
			l.log.Warn().Err(err).Str("feed", "items").Msg("feed de seed no disponible")
			return nil
		}
		itemsRaw = data
		return nil
	})
	g.Go(func() error {
		data, err := l.fetch(gctx, l.cfg.RequestsURL)
		if err != nil {
			l.log.Warn().Err(err).Str("feed", "requests").Msg("feed de seed no disponible")
			return nil
		}
		requestsRaw = data
		return nil
	})
	_ = g.Wait() // las goroutines nunca devuelven error: degradan a vacío

	if len(itemsRaw) > 0 {
		res.Items = l.parseItems(bytes.NewReader(itemsRaw))
	}
	if len(requestsRaw) > 0 {
		res.OpeningBalances, res.OpeningLedger = l.parseRequests(bytes.NewReader(requestsRaw))
	}

	l.log.Info().
		Int("items", len(res.Items)).
		Int("opening_entries", len(res.OpeningLedger)).
		Msg("seed cargado")
	return res
}

// fetch obtiene el contenido crudo de un feed: URL http(s) o ruta local.
// Fuente vacía devuelve vacío sin error (feed no configurado).
func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, nil
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("seed: estado HTTP %d de %s", resp.StatusCode, src)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	}
	return os.ReadFile(src)
}

// Classify asigna la clase del artículo por convención de prefijo del código
// (sin distinguir mayúsculas). Códigos sin convención reconocida son OTHER.
func (l *Loader) Classify(code string) string {
	upper := strings.ToUpper(code)
	for _, p := range l.cfg.RawPrefixes {
		if strings.HasPrefix(upper, strings.ToUpper(p)) {
			return entity.ItemKindRaw
		}
	}
	for _, p := range l.cfg.FinishedPrefixes {
		if strings.HasPrefix(upper, strings.ToUpper(p)) {
			return entity.ItemKindFinished
		}
	}
	return entity.ItemKindOther
}
