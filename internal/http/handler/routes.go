package handler

import (
	"context"
	_ "embed"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docserver/internal/service"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>docserver API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// ping backs /health; a nil gatherer leaves /metrics unregistered.
func RegisterRoutes(app *fiber.App, ping func(context.Context) error, docSvc service.DocumentService, gatherer prometheus.Gatherer) {
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.Send(openAPISpec)
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Type("html").SendString(docsPage)
	})

	app.Get("/health", HealthCheck(ping))
	app.Get("/healthz", Liveness())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", StoreDocument(docSvc))
	app.Post("/documents/upload", UploadDocument(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Put("/documents/:id", ReplaceDocument(docSvc))
	app.Get("/documents/:id/content", ReadDocument(docSvc))

	app.Get("/expiring-documents", ListExpiredDocuments(docSvc))
	app.Post("/files", StoreFile(docSvc))
}
