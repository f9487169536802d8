package std

import (
	"errors"
	"fmt"
	"maps"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/ichaly/entschema/log"
)

// Result 统一响应结构
type Result struct {
	Data       interface{}  `json:"data,omitempty"`
	Errors     []*Exception `json:"errors,omitempty"`
	Extensions Extension    `json:"extensions,omitempty"`
}

// Extension 扩展信息
type Extension map[string]interface{}

// Exception 统一的异常结构
type Exception struct {
	Message    string    `json:"message"`
	Extensions Extension `json:"extensions,omitempty"`

	statusCode int
}

func (my *Exception) Error() string {
	return my.Message
}

// StatusCode 异常对应的HTTP状态码
func (my *Exception) StatusCode() int {
	return my.statusCode
}

// NewException 创建异常实例，仅设置状态码
func NewException(statusCode int) *Exception {
	return &Exception{statusCode: statusCode}
}

// With 为Exception添加扩展字段，支持链式调用
func (my *Exception) With(key string, value interface{}) *Exception {
	if value == nil {
		return my
	}
	if my.Extensions == nil {
		my.Extensions = make(Extension)
	}
	my.Extensions[key] = value
	return my
}

// WithMessage 设置错误消息
func (my *Exception) WithMessage(message string) *Exception {
	if message != "" {
		my.Message = message
	}
	return my
}

// WithError 绑定底层错误信息，合并扩展并在必要时填充消息
func (my *Exception) WithError(err error) *Exception {
	if carrier, ok := err.(interface{ Extensions() Extension }); ok {
		if ext := carrier.Extensions(); len(ext) > 0 {
			if my.Extensions == nil {
				my.Extensions = maps.Clone(ext)
			} else {
				maps.Copy(my.Extensions, ext)
			}
		}
	}
	if my.Message == "" {
		my.Message = err.Error()
	}
	return my
}

// Failure 携带多个异常的错误，用于一次返回全部问题
type Failure struct {
	Status     int
	Exceptions []*Exception
}

func (my *Failure) Error() string {
	return fmt.Sprintf("请求失败(%d)", len(my.Exceptions))
}

const extensionsKey = "response_extensions"

// SetExtension 在Handler中设置响应扩展字段
func SetExtension(c *fiber.Ctx, key string, value interface{}) {
	extensions, _ := c.Locals(extensionsKey).(Extension)
	if extensions == nil {
		extensions = make(Extension)
	}
	extensions[key] = value
	c.Locals(extensionsKey, extensions)
}

func getExtension(c *fiber.Ctx) Extension {
	ext, _ := c.Locals(extensionsKey).(Extension)
	return ext
}

// WrapHandler Handler包装器，统一包装响应格式
func WrapHandler(handler func(*fiber.Ctx) (any, error)) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
				err = c.Status(fiber.StatusInternalServerError).JSON(Result{
					Errors: []*Exception{
						NewException(fiber.StatusInternalServerError).WithMessage("服务器内部错误"),
					},
				})
			}
		}()

		data, err := handler(c)
		if err != nil {
			return ErrorHandler(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(Result{Data: data, Extensions: getExtension(c)})
	}
}

// ErrorHandler 将错误转换为统一响应，同时作为fiber的全局错误处理器
func ErrorHandler(c *fiber.Ctx, err error) error {
	var failure *Failure
	if errors.As(err, &failure) {
		return c.Status(failure.Status).JSON(Result{Errors: failure.Exceptions, Extensions: getExtension(c)})
	}
	var ex *Exception
	if errors.As(err, &ex) {
		return c.Status(ex.statusCode).JSON(Result{Errors: []*Exception{ex}})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Result{Errors: []*Exception{
			NewException(fe.Code).WithMessage(fe.Message),
		}})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("请求处理失败")
	return c.Status(fiber.StatusInternalServerError).JSON(Result{
		Errors: []*Exception{
			NewException(fiber.StatusInternalServerError).WithMessage("内部服务器错误").WithError(err),
		},
	})
}
