package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var rawSpec []byte

var registerYAML sync.Once

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// validateRequests rejects requests that do not match the OpenAPI
// document with 400. Routes the document does not describe pass through.
// Bodies without a content type are read as YAML, like Solve does.
func validateRequests(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}
	registerYAML.Do(func() {
		openapi3filter.RegisterBodyDecoder("application/yaml", decodeYAML)
		openapi3filter.RegisterBodyDecoder("application/x-yaml", decodeYAML)
	})
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				var re *routers.RouteError
				if !errors.As(err, &re) {
					logger.Warn("openapi routing failed", "path", r.URL.Path, "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength != 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxProblemSize+1)
				if r.Header.Get("Content-Type") == "" {
					r.Header.Set("Content-Type", "application/yaml")
				}
			}
			in := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), in); err != nil {
				http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
				logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// decodeYAML decodes a YAML body into the JSON shapes schema validation
// expects.
func decodeYAML(body io.Reader, _ http.Header, _ *openapi3.SchemaRef, _ openapi3filter.EncodingFn) (any, error) {
	var v any
	if err := yaml.NewDecoder(body).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(rawSpec); err != nil {
		s.logger.Error("spec write failed", "err", err)
	}
}
