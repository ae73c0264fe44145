package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"task-tracker/internal/domain"
	"task-tracker/internal/identity"
)

// PrincipalKey is the Locals key holding the request's domain.Principal.
const PrincipalKey = "principal"

// fiberRequest adapts a fiber context to identity.Request.
type fiberRequest struct {
	c *fiber.Ctx
}

func (r fiberRequest) Header(name string) string {
	return r.c.Get(name)
}

func (r fiberRequest) Meta(key string) string {
	for name, values := range r.c.GetReqHeaders() {
		if identity.MetaKey(name) == key && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// identityMiddleware resolves the principal once per request. It never
// rejects a request; handlers decide what anonymous callers may do.
func (s *Server) identityMiddleware(c *fiber.Ctx) error {
	principal := s.resolver.Resolve(c.UserContext(), fiberRequest{c: c})
	c.Locals(PrincipalKey, principal)
	return c.Next()
}

func principalFrom(c *fiber.Ctx) domain.Principal {
	if p, ok := c.Locals(PrincipalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous()
}

// requestLogger writes one structured line per request. Errors are
// rendered here so the logged status is the one the client sees.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"principal", principalFrom(c).String(),
	)
	return nil
}
