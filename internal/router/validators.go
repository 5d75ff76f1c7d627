package router

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clinicore/records-api/pkg/phone"
)

// RegisterValidators installs the custom binding rules. Call once before
// building the engine.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, err := phone.Normalize(fl.Field().String())
		return err == nil
	})
}
