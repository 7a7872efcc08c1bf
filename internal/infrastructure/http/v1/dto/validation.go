package dto

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"khaata/internal/domain/conversion"
)

var registerOnce sync.Once

// RegisterValidators adds the custom tags to gin's validator engine:
//
//	quantity  a base count or a well-formed "W.R" compound string
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(quantityValue, conversion.Quantity{})
		_ = v.RegisterValidation("quantity", validateQuantity)
	})
}

func quantityValue(field reflect.Value) any {
	if q, ok := field.Interface().(conversion.Quantity); ok {
		return q.String()
	}
	return nil
}

func validateQuantity(fl validator.FieldLevel) bool {
	return conversion.Validate(fl.Field().String()) == nil
}
