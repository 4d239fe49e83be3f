package apierror

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

// Bind decodes the request body into obj. Malformed bodies are bad requests;
// well-formed bodies that break a field rule are validation errors.
func Bind(c *gin.Context, obj any) error {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return BadRequest("request body is required")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return BadRequest("malformed request body: " + err.Error())
	}
	return Validation("invalid input: " + err.Error())
}
