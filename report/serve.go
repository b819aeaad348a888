package report

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/christiemegill/social-media-analysis/models"
	"github.com/christiemegill/social-media-analysis/stats"
)

// Viewer returns a fiber.App that serves a rendered report directory at /
// together with JSON endpoints for the data behind the charts.
func Viewer(dir string, overview stats.Overview, posts []models.NormalizedPost) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	app.Get("/api/summary", func(c *fiber.Ctx) error {
		return c.JSON(overview)
	})

	app.Get("/api/posts", func(c *fiber.Ctx) error {
		if posts == nil {
			posts = []models.NormalizedPost{}
		}
		return c.JSON(posts)
	})

	// Serve the rendered report
	app.Use("/", filesystem.New(filesystem.Config{
		Browse: false,
		Index:  ReportFile,
		Root:   http.Dir(dir),
	}))

	return app
}
