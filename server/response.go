package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/classify"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries response metadata.
type Meta struct {
	// Recovered is set when the data was produced by a recovery.
	Recovered bool `json:"recovered,omitempty"`
}

// RespondWithError classifies err and sends its client-safe rendering with
// the status recommended for its kind.
func RespondWithError(c *gin.Context, err error) {
	te := classify.Classify(err, nil)
	_ = c.Error(err)
	c.JSON(te.HTTPStatus(), te.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusCreated, DataResponse{Data: data, Meta: meta})
}
