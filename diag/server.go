// Package diag exposes a read-only introspection HTTP server over the
// daemon's registry and selector health stats, built with gin. This is
// not the caller RPC transport (that is explicitly out of scope); it
// only answers operational questions — what's loaded, what's healthy —
// for whatever dashboard or curl probe wants them.
package diag

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"actiond/executor"
	"actiond/loader"
)

// Server is the introspection HTTP surface.
type Server struct {
	log     *slog.Logger
	loader  *loader.Loader
	exec    *executor.Executor
	server  *http.Server
	started time.Time
}

// New builds a Server bound to addr (e.g. ":9091"). Routes are
// registered but nothing listens until Start is called.
func New(log *slog.Logger, l *loader.Loader, e *executor.Executor, addr string) *Server {
	if log == nil {
		log = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{log: log, loader: l, exec: e}
	router.GET("/healthz", s.handleHealth)
	router.GET("/namespaces", s.handleNamespaces)
	router.GET("/actions", s.handleActions)
	router.GET("/actions/:namespace", s.handleActions)
	router.GET("/selectors/stats", s.handleSelectorStats)

	s.server = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start begins listening and blocks until the context is cancelled, at
// which point it shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.started = time.Now()
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("diag server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("diag server shutting down")
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) handleNamespaces(c *gin.Context) {
	reg := s.loader.Registry()
	names := reg.ListNamespaces()
	out := make([]gin.H, 0, len(names))
	for _, name := range names {
		ns, ok := reg.GetNamespace(name)
		if !ok {
			continue
		}
		out = append(out, gin.H{
			"name":    ns.Name,
			"version": ns.Version,
			"extends": ns.Extends,
			"actions": len(ns.Actions),
		})
	}
	c.JSON(http.StatusOK, gin.H{"namespaces": out})
}

func (s *Server) handleActions(c *gin.Context) {
	namespace := c.Param("namespace")
	reg := s.loader.Registry()

	var names []string
	if namespace != "" {
		names = reg.ListActionsIn(namespace)
	} else {
		for _, ns := range reg.ListNamespaces() {
			names = append(names, reg.ListActionsIn(ns)...)
		}
	}

	out := make([]gin.H, 0, len(names))
	for _, name := range names {
		a, ok := reg.GetAction(name)
		if !ok {
			continue
		}
		out = append(out, gin.H{
			"fullName":    a.FullName,
			"description": a.Description,
			"deprecated":  a.Deprecated,
		})
	}
	c.JSON(http.StatusOK, gin.H{"actions": out})
}

func (s *Server) handleSelectorStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"selectors": s.exec.SelectorStats()})
}
