package services

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"

	apperrors "pms/pkg/errors"
	"pms/pkg/events"
	"pms/pkg/logger"
	"pms/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// requestValidator 与 gin 绑定共用 binding 标签，供 CLI 等非HTTP调用方使用
var requestValidator = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(JSONTagName)
	return v
}()

// JSONTagName 校验错误中使用 json 字段名
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// validateRequest 校验请求结构体
func validateRequest(req interface{}) error {
	if err := requestValidator.Struct(req); err != nil {
		if appErr, ok := apperrors.FromValidator(err); ok {
			return appErr
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}

// changeNotifier 事务提交后发布变更事件，发布失败不影响写操作
type changeNotifier struct {
	broker events.Broker
}

func (n changeNotifier) notify(ctx context.Context, eventType string, id uint) {
	if n.broker == nil {
		return
	}
	if err := n.broker.Publish(ctx, events.New(eventType, id)); err != nil {
		logger.GetLogger().WithFields(logrus.Fields{
			"event": eventType,
			"id":    id,
		}).Warnf("发布变更事件失败: %v", err)
	}
}

// paginate 统计总数并取当前页，预加载只作用于取数
func paginate(query *gorm.DB, page *pagination.PageParams, order string, dest interface{}, preloads ...string) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	for _, p := range preloads {
		query = query.Preload(p)
	}
	err := query.Order(order).
		Offset(page.GetOffset()).
		Limit(page.GetLimit()).
		Find(dest).Error
	return total, err
}

// likePattern 构造大小写不敏感的模糊匹配参数
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
