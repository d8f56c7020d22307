package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/mzaraf/vms/pkg/errors"
	"github.com/mzaraf/vms/pkg/response"
)

func init() {
	// 校验错误中使用 json / form 标签名作为字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// bindJSON 解析并校验请求体，失败时写入 400 响应并返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	return handleBindError(c, c.ShouldBindJSON(obj))
}

// bindQuery 解析并校验查询参数，失败时写入 400 响应并返回 false
func bindQuery(c *gin.Context, obj interface{}) bool {
	return handleBindError(c, c.ShouldBindQuery(obj))
}

func handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ve := &apperrors.ValidationError{}
		for _, fe := range verrs {
			ve.Add(fe.Field(), fieldMessage(fe))
		}
		response.ValidationFailed(c, ve)
		return false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
		return false
	}
	response.BadRequest(c, response.CodeValidation, "invalid request body")
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "invalid value"
}

// respondValidation 若 err 为字段校验错误则写入 400 响应并返回 true
func respondValidation(c *gin.Context, err error) bool {
	if ve, ok := apperrors.AsValidation(err); ok {
		response.ValidationFailed(c, ve)
		return true
	}
	return false
}
