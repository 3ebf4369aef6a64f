package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/ovconfig"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// NewRouter registers every query route on a fresh gin engine and wraps it
// with the CORS policy of cfg.
func NewRouter(h *Handler, cfg ovconfig.HTTPConfig) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if cfg.RateLimit > 0 {
		r.Use(rateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/global", h.GetGlobal)
		v1.GET("/proposals/:id", h.GetProposal)
		v1.GET("/proposals/:id/votes/:voter", h.GetVote)
		v1.GET("/events/:id", h.GetEvent)
		v1.GET("/events/:id/rsvps/:user", h.GetRSVP)
		v1.GET("/stakes/:staker/:asset", h.GetStake)
		v1.GET("/badges/:id", h.GetBadge)
		v1.GET("/access/:user/:asset", h.GetAccess)
		v1.GET("/nfts/:mint", h.GetNFT)
		v1.GET("/nfts/:mint/royalty", h.GetRoyalty)
		v1.GET("/communities/:id", h.GetCommunity)
		v1.GET("/communities/:id/messages/:seq", h.GetMessage)
		v1.GET("/balances/:owner/:asset", h.GetBalance)
		v1.GET("/derive/:tag", h.GetDerive)
		v1.GET("/stats", h.GetStats)
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		MaxAge:         600,
	}).Handler(r)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Trace("Served query", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "elapsed", time.Since(start))
	}
}

func rateLimiter(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("HTTP server started", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if rerr := <-errc; !errors.Is(rerr, http.ErrServerClosed) && err == nil {
		err = rerr
	}
	log.Info("HTTP server stopped", "addr", addr)
	return err
}
