// Package main implements a mock IntelliSearch server for local development.
// It serves find results from a JSON fixture and issues short-lived JWTs from
// a token endpoint, so the client can be exercised without a real index.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/donaldgifford/intellisearch-client/internal/api/middleware"
	"github.com/donaldgifford/intellisearch-client/pkg/logger"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

const (
	sessionCookie   = "isl_session"
	defaultPageSize = 10
)

type serverConfig struct {
	signingKey  []byte
	tokenTTL    time.Duration
	requireAuth bool
}

func main() {
	port := flag.Int("port", 9000, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/find_response.json", "path to find response fixture")
	tokenTTL := flag.Duration("token-ttl", 5*time.Minute, "lifetime of issued tokens")
	requireAuth := flag.Bool("require-auth", false, "reject find requests without a valid bearer token")
	logLevel := flag.String("log-level", "debug", "log level")
	flag.Parse()

	log := logger.New(*logLevel, "text")

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		log.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	log.Info("loaded fixture", "matches", len(fixture.SearchMatches))

	e := newServer(log, fixture, serverConfig{
		signingKey:  []byte("mock-signing-key-" + strconv.Itoa(os.Getpid())),
		tokenTTL:    *tokenTTL,
		requireAuth: *requireAuth,
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting mock search server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutting down server", "error", err)
		os.Exit(1)
	}
}

func newServer(log *slog.Logger, fixture *domain.Matches, cfg serverConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(log))
	e.Use(mw.RequestLog(log))
	e.Use(mw.Metrics())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/token", tokenHandler(cfg))

	find := findHandler(fixture)
	if cfg.requireAuth {
		find = requireBearer(cfg.signingKey, find)
	}
	e.GET("/api/v4/find", find)

	return e
}

func loadFixture(path string) (*domain.Matches, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp domain.Matches
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

// tokenHandler issues a signed JWT whose subject is the session cookie. The
// cookie is set on the first call.
func tokenHandler(cfg serverConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		session := ""
		if ck, err := c.Cookie(sessionCookie); err == nil {
			session = ck.Value
		}
		if session == "" {
			session = strconv.FormatInt(time.Now().UnixNano(), 36)
			c.SetCookie(&http.Cookie{Name: sessionCookie, Value: session, Path: "/", HttpOnly: true})
		}

		now := time.Now()
		claims := jwt.RegisteredClaims{
			Subject:   session,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.tokenTTL)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.signingKey)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "signing token")
		}

		return c.JSON(http.StatusOK, map[string]string{"jwtToken": token})
	}
}

func requireBearer(key []byte, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		}

		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		return next(c)
	}
}

func findHandler(fixture *domain.Matches) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
		filters := c.QueryParams()["f"]

		page := 1
		if v, err := strconv.Atoi(c.QueryParam("p")); err == nil && v > 0 {
			page = v
		}
		pageSize := defaultPageSize
		if v, err := strconv.Atoi(c.QueryParam("ps")); err == nil && v > 0 {
			pageSize = v
		}

		var matched []domain.SearchMatch
		for _, m := range fixture.SearchMatches {
			if matchesText(m, q) && matchesFilters(m, filters) {
				matched = append(matched, m)
			}
		}

		if domain.OrderBy(c.QueryParam("o")) == domain.OrderByDate {
			slices.SortStableFunc(matched, func(a, b domain.SearchMatch) int {
				return strings.Compare(b.Date, a.Date)
			})
		}

		total := len(matched)
		offset := (page - 1) * pageSize
		if offset >= total {
			matched = nil
		} else {
			matched = matched[offset:min(offset+pageSize, total)]
		}

		resp := domain.Matches{
			SearchMatches:    matched,
			SearchMatchCount: total,
		}
		if resp.SearchMatches == nil {
			resp.SearchMatches = []domain.SearchMatch{}
		}
		if offset+pageSize < total {
			resp.NextPage = &domain.PageLink{Page: page + 1}
		}
		if page > 1 {
			resp.PrevPage = &domain.PageLink{Page: page - 1}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func matchesText(m domain.SearchMatch, q string) bool {
	if q == "" {
		return true
	}
	for _, word := range strings.Fields(q) {
		if !strings.Contains(strings.ToLower(m.Title), word) &&
			!strings.Contains(strings.ToLower(m.Abstract), word) {
			return false
		}
	}
	return true
}

// matchesFilters reports whether m sits under every filter path.
func matchesFilters(m domain.SearchMatch, filters []string) bool {
	for _, f := range filters {
		want := strings.Split(f, "|")
		found := false
		for _, cat := range m.Categories {
			if len(cat.CategoryName) >= len(want) && slices.Equal(cat.CategoryName[:len(want)], want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
