package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/questx-lab/secretsanta/config"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A non-nil error stops the request
// and is written as the response.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, the error of the request is
// available through xcontext.Error.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux     chi.Router
	ctx     context.Context
	befores []MiddlewareFunc
	closers []CloserFunc
}

// New returns a router whose handlers receive the values of ctx (configs,
// logger, database) along with the request.
func New(ctx context.Context) *Router {
	return &Router{
		mux: chi.NewRouter(),
		ctx: ctx,
	}
}

// Branch returns a router sharing the routes of r. Middlewares and closers
// added to the branch do not affect r.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handler returns the http.Handler serving every route, with CORS for the
// allowed origins.
func (r *Router) Handler(cfg config.APIServerConfigs) http.Handler {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func PATCH[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPatch, pattern, handler)
}

func DELETE[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodDelete, pattern, handler)
}

func route[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := append([]MiddlewareFunc{}, r.befores...)
	closers := append([]CloserFunc{}, r.closers...)

	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := xcontext.WithHTTPRequest(r.ctx, req)

		resp, err := func() (*Response, error) {
			var err error
			for _, before := range befores {
				if ctx, err = before(ctx); err != nil {
					return nil, err
				}
			}

			var request Request
			if err := bind(req, &request); err != nil {
				return nil, err
			}

			return handler(ctx, &request)
		}()

		ctx = xcontext.WithError(ctx, err)
		handleResponse(ctx, w, resp, err)

		for _, closer := range closers {
			closer(ctx)
		}
	}))
}
