package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"

	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// validatePeriod проверяет, что строковое поле - действительный период P1..P12.
func validatePeriod(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := domain.ParsePeriod(str)
	return err == nil
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)
	if err := v.RegisterValidation("period", validatePeriod); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
