package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/placeboard/placeboard/internal/client"
)

// ErrInvalidConfig wraps validation failures of a Config.
var ErrInvalidConfig = errors.New("invalid request config")

// Config describes one call
type Config struct {
	Method  string            `validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	URL     string            `validate:"required"`
	Body    any               `validate:"-"`
	Headers map[string]string `validate:"dive,keys,required,endkeys"`
	Timeout time.Duration     `validate:"gte=0"`
}

var validate = validator.New()

// Validate normalizes the method and checks every field
func (c *Config) Validate() error {
	c.Method = strings.ToUpper(c.Method)
	if c.Method == "" {
		c.Method = "GET"
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidConfig, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) toRequest() client.Request {
	return client.Request{
		Method:  c.Method,
		URL:     c.URL,
		Body:    c.Body,
		Headers: c.Headers,
		Timeout: c.Timeout,
	}
}
