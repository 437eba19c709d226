package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BizError 业务错误，Status 为 HTTP 状态码，Code 为稳定的机器可读错误码
type BizError struct {
	Status int
	Code   string
	Msg    string
	Data   map[string]any
}

func (e *BizError) Error() string {
	return e.Code + ": " + e.Msg
}

func NewError(status int, code, msg string) *BizError {
	return &BizError{
		Status: status,
		Code:   code,
		Msg:    msg,
	}
}

// With 返回附带额外字段的副本，哨兵错误本身不被修改
func (e *BizError) With(key string, value any) *BizError {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	return &BizError{Status: e.Status, Code: e.Code, Msg: e.Msg, Data: data}
}

// Is 按错误码比较，errors.Is 可以匹配 With 出来的副本
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	return ok && t.Code == e.Code
}

// Body 渲染给客户端的结构
func (e *BizError) Body() gin.H {
	body := gin.H{"code": e.Code, "message": e.Msg}
	for k, v := range e.Data {
		body[k] = v
	}
	return body
}

func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "系统异常",
				})
			}
		}()

		c.Next()
	}
}

func Abort(c *gin.Context, err *BizError) {
	c.AbortWithStatusJSON(err.Status, err.Body())
}
