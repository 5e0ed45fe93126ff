package http

import (
	_ "embed"
	"log"
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

//go:embed docs/openapi.yaml
var openAPIYAML []byte

// RegisterSwagger serves the embedded OpenAPI document as JSON and the
// Swagger UI under /swagger. The document is converted once at startup.
func RegisterSwagger(e *echo.Echo) {
	doc, err := yaml.YAMLToJSON(openAPIYAML)
	if err != nil {
		log.Printf("swagger: convert openapi.yaml: %v", err)
	}
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		if err != nil {
			return c.JSON(http.StatusInternalServerError, util.Error("api documentation unavailable"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, doc)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
