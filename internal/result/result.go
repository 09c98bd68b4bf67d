package result

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	// KindText is a plain-text body.
	KindText Kind = iota + 1
	// KindView is a named template rendered with a context map.
	KindView
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindView:
		return "view"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrUnknownKind is returned by Send for a Result with no valid Kind.
var ErrUnknownKind = errors.New("unknown result kind")

// Result is the value a controller action returns. Exactly one of Body
// (KindText) or View/Locals (KindView) is meaningful.
type Result struct {
	Kind   Kind
	Status int
	Body   string
	View   string
	Locals map[string]any
}

// Text returns a plain-text result.
func Text(body string) Result {
	return Result{Kind: KindText, Status: fiber.StatusOK, Body: body}
}

// HTML returns a view result for the named template with an empty context.
func HTML(view string) Result {
	return Result{Kind: KindView, Status: fiber.StatusOK, View: view, Locals: map[string]any{}}
}

// Put returns a copy of r with key bound to value in the rendering context.
// The receiver's context map is never modified.
func (r Result) Put(key string, value any) Result {
	locals := make(map[string]any, len(r.Locals)+1)
	maps.Copy(locals, r.Locals)
	locals[key] = value
	r.Locals = locals
	return r
}

// WithStatus returns a copy of r answering with the given status code.
func (r Result) WithStatus(status int) Result {
	r.Status = status
	return r
}

// Send writes r to the response. Rendering errors are returned as-is so the
// application error handler decides the response.
func (r Result) Send(c *fiber.Ctx) error {
	status := r.Status
	if status == 0 {
		status = fiber.StatusOK
	}

	switch r.Kind {
	case KindText:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(r.Body)
	case KindView:
		trace.SpanFromContext(c.UserContext()).SetAttributes(attribute.String("view.name", r.View))
		locals := r.Locals
		if locals == nil {
			locals = map[string]any{}
		}
		// Render sets the HTML content type and body only on success.
		if err := c.Status(status).Render(r.View, locals); err != nil {
			return fmt.Errorf("render %q: %w", r.View, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, r.Kind)
	}
}
