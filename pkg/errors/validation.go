package errors

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidator 将 validator 的校验错误转换为带字段信息的 AppError
func FromValidator(err error) (*AppError, bool) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return nil, false
	}
	appErr := Validation("参数验证失败")
	for _, fe := range verrs {
		appErr.WithField(fieldName(fe), describe(fe))
	}
	return appErr, true
}

func fieldName(fe validator.FieldError) string {
	// Namespace 形如 CreateContactRequest.email（已注册json标签名）
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段不能为空"
	case "email":
		return "邮箱格式不正确"
	case "oneof":
		return "取值必须是以下之一: " + fe.Param()
	case "datetime":
		return "日期格式应为 YYYY-MM-DD"
	case "min", "gte":
		return "不能小于 " + fe.Param()
	case "max", "lte":
		return "不能大于 " + fe.Param()
	case "gt":
		return "必须大于 " + fe.Param()
	default:
		return "校验失败: " + fe.Tag()
	}
}
