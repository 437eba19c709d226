package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 直接输出数据体，不再额外包一层 code/msg
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Fail(c *gin.Context, err *BizError) {
	c.JSON(err.Status, err.Body())
}
