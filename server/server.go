package server

import (
	"errors"
	"net"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/pollhive/api.pollhive.dev/configure"
	"github.com/pollhive/api.pollhive.dev/directory"
	"github.com/pollhive/api.pollhive.dev/poll"
	"github.com/pollhive/api.pollhive.dev/utils"

	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Server struct {
	app *fiber.App
	ln  net.Listener
}

type customLogger struct{}

func (*customLogger) Write(data []byte) (n int, err error) {
	log.Debugln(utils.B2S(data))
	return len(data), nil
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}

func NewServer(svc *poll.Service, dir *directory.Directory) *Server {
	ln, err := net.Listen(configure.Config.GetString("listener_network"), configure.Config.GetString("listener_address"))
	checkErr(err)

	server := &Server{
		ln: ln,
		app: newApp(
			svc,
			dir,
			configure.Config.GetString("google_client_id"),
			configure.Config.GetString("frontend_origin"),
		),
	}

	go func() {
		err = server.app.Listener(server.ln)
		if err != nil {
			log.Errorf("failed to start http server, err=%v", err)
		}
	}()

	return server
}

func newApp(svc *poll.Service, dir *directory.Directory, audience, origin string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(corsMiddleware(origin))
	app.Use(logger.New(logger.Config{
		Output: &customLogger{},
	}))

	h := &Handlers{svc: svc, dir: dir}

	api := app.Group("/", RequireAuth(audience))
	api.Get("/users", h.GetUsers)
	api.Get("/polls", h.GetPolls)
	api.Post("/polls", h.CreatePoll)
	api.Get("/polls/:id", h.GetPoll)
	api.Delete("/polls/:id", h.DeletePoll)
	api.Post("/polls/:id/users", h.AddUsers)
	api.Post("/polls/:id/vote", h.Vote)
	api.Post("/polls/:id/close", h.ClosePoll)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(&fiber.Map{
			"status":  404,
			"message": "We don't know what you're looking for.",
		})
	})

	return app
}

func corsMiddleware(origin string) fiber.Handler {
	cfg := cors.Config{
		AllowMethods: "GET, POST, DELETE, OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
	}
	if origin != "" {
		cfg.AllowOrigins = origin
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// errorHandler maps the domain error taxonomy onto status codes. Anything
// untyped is a store or programming failure and stays a plain 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var vErr *poll.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  vErr.Error(),
			"fields": vErr.Fields,
		})
	}

	var fErr *poll.ForbiddenError
	if errors.As(err, &fErr) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fErr.Error(),
		})
	}

	if errors.Is(err, poll.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "poll not found",
		})
	}

	var httpErr *fiber.Error
	if errors.As(err, &httpErr) {
		return c.Status(httpErr.Code).JSON(fiber.Map{
			"error": httpErr.Message,
		})
	}

	log.Errorf("internal err=%v", spew.Sdump(err))

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func (s *Server) Shutdown() error {
	return s.ln.Close()
}
