package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorIsMatchesByCode(t *testing.T) {
	err := Conflict("单元 %s 已存在", "A1")

	assert.True(t, stderrors.Is(err, ErrConflict))
	assert.False(t, stderrors.Is(err, ErrNotFound))
	assert.Equal(t, "单元 A1 已存在", err.Error())

	wrapped := fmt.Errorf("create unit: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrConflict))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeConflict, appErr.Code)
}

func TestFieldValidation(t *testing.T) {
	err := FieldValidation("email", "邮箱格式不正确")

	assert.True(t, stderrors.Is(err, ErrValidation))
	assert.Equal(t, map[string]string{"email": "邮箱格式不正确"}, err.Fields)
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(stderrors.New("boom"))
	assert.False(t, ok)
}

func TestFromValidator(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Date  string `validate:"required,datetime=2006-01-02"`
	}
	err := validator.New().Struct(payload{Email: "nope", Date: "01/02/2025"})

	appErr, ok := FromValidator(err)
	assert.True(t, ok)
	assert.Equal(t, CodeInvalidParam, appErr.Code)
	assert.Equal(t, "邮箱格式不正确", appErr.Fields["Email"])
	assert.Equal(t, "日期格式应为 YYYY-MM-DD", appErr.Fields["Date"])

	_, ok = FromValidator(fmt.Errorf("plain"))
	assert.False(t, ok)
}
