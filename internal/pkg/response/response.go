package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// CustomError accepts a message string, an error or validation details.
func CustomError(c *gin.Context, statusCode int, code string, payload any) {
	switch v := payload.(type) {
	case string:
		Error(c, statusCode, code, v)
	case error:
		ErrorWithDetails(c, statusCode, code, "Operation failed", v.Error())
	default:
		ErrorWithDetails(c, statusCode, code, "Invalid request", v)
	}
}
