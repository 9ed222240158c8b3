package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the standard envelope. Handlers never call c.JSON
// directly so every endpoint, including errors, shares one response shape.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
