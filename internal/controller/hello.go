package controller

import (
	"github.com/gofiber/fiber/v2"

	"hellomvc/internal/model"
	"hellomvc/internal/result"
)

const (
	// Prefix is the path every HelloController route lives under.
	Prefix = "/hello"
	// Greeting is the body of GET /hello.
	Greeting = "Hello isaccanedo"
	// WelcomeView is the template rendered by GET /hello/home.
	WelcomeView = "welcome"
	// ModelKey binds the placeholder model in the welcome view context.
	ModelKey = "model"
)

// Action handles one request and describes the response to send.
type Action func(c *fiber.Ctx) (result.Result, error)

// Route maps an HTTP method and path to an Action.
type Route struct {
	Method string
	Path   string
	Action Action
}

// HelloController serves the greeting and the welcome page. It holds no state.
type HelloController struct{}

// NewHelloController creates a HelloController.
func NewHelloController() *HelloController {
	return &HelloController{}
}

// Routes returns the controller's route table.
func (h *HelloController) Routes() []Route {
	return []Route{
		{Method: fiber.MethodGet, Path: Prefix, Action: h.Hello},
		{Method: fiber.MethodGet, Path: Prefix + "/home", Action: h.Home},
	}
}

// Hello returns the plain-text greeting.
//
// @Summary Greeting
// @Tags hello
// @Produce plain
// @Success 200 {string} string "Hello isaccanedo"
// @Router /hello [get]
func (h *HelloController) Hello(*fiber.Ctx) (result.Result, error) {
	return result.Text(Greeting), nil
}

// Home renders the welcome view with an empty model.
//
// @Summary Welcome page
// @Tags hello
// @Produce html
// @Success 200 {string} string "rendered welcome view"
// @Failure 500 {object} handler.errorPayload
// @Router /hello/home [get]
func (h *HelloController) Home(*fiber.Ctx) (result.Result, error) {
	return result.HTML(WelcomeView).Put(ModelKey, model.NewPlaceholder()), nil
}
