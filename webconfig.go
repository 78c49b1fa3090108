package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	auth "github.com/abbot/go-http-auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 10 * time.Second

// WebConfig serves the claim endpoint
type WebConfig struct {
	serveConfig ServeConfig
	site        SiteConfig

	// shared by all bots, holds no cookies
	transport http.RoundTripper
	notifier  *Notifier

	hashedPassword string
}

// InitWebConfig prepares the web application from configuration
func (w *WebConfig) InitWebConfig(config Configuration, notifier *Notifier) error {
	w.serveConfig, w.site, w.notifier = config.Serve, config.Site, notifier
	w.transport = http.DefaultTransport.(*http.Transport).Clone()

	if w.serveConfig.ListenPort == 0 {
		w.serveConfig.ListenPort = defaultPort
	}

	if w.serveConfig.isAuthEnabled() {
		hashed, err := bcrypt.GenerateFromPassword([]byte(w.serveConfig.HTTPAuthPwd), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		w.hashedPassword = string(hashed)
	} else {
		stdlog.Info().Msg("no http auth settings, claim endpoint is open")
	}

	return nil
}

func (w *WebConfig) secret(user, realm string) string {
	if user == w.serveConfig.HTTPAuthLogin {
		return w.hashedPassword
	}
	return ""
}

func (w *WebConfig) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
	})

	if w.serveConfig.isAuthEnabled() {
		authenticator := auth.NewBasicAuthenticator("kagebot", w.secret)
		r.Get("/claim_rewards", authenticator.Wrap(func(rw http.ResponseWriter, req *auth.AuthenticatedRequest) {
			w.claimRewards(rw, &req.Request)
		}))
	} else {
		r.Get("/claim_rewards", w.claimRewards)
	}

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)

		stdlog.Info().
			Str("request", middleware.GetReqID(req.Context())).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// parseTarget reads email, server and itemid from the query string
func parseTarget(req *http.Request) (target ClaimTarget, msg string) {
	q := req.URL.Query()
	for _, key := range []string{"email", "server", "itemid"} {
		if !q.Has(key) {
			return target, "missing query parameter: " + key
		}
	}

	server, err := strconv.Atoi(q.Get("server"))
	if err != nil {
		return target, "server must be an integer"
	}

	return ClaimTarget{Email: q.Get("email"), Server: server, ItemID: q.Get("itemid")}, ""
}

func (w *WebConfig) claimRewards(rw http.ResponseWriter, req *http.Request) {
	target, msg := parseTarget(req)
	if msg != "" {
		writeDetail(rw, http.StatusUnprocessableEntity, msg)
		return
	}

	bot := NewBot(w.site, w.transport)
	result, err := bot.CheckDaily(req.Context(), target, nil)
	if err != nil {
		errlog.Error().Err(err).
			Str("email", target.Email).Int("server", target.Server).Str("item", target.ItemID).
			Msg("claim request failed")
		if w.notifier != nil {
			go w.notifier.ClaimFailed(target, err)
		}
	}

	status, payload := resultPayload(result, err)
	writeJSON(rw, status, payload)
}

// Serve runs http service until ctx is done
func (w *WebConfig) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:              w.serveConfig.addr(),
		Handler:           w.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		stdlog.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		errlog.Error().Err(err).Msg("Fatal. Error starting http server")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stdlog.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
