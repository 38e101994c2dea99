package handlers

import (
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the ledger's custom binding tags to gin's validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("accounttype", validateAccountType)
	}
}

// validateAccountType backs the `accounttype` binding tag.
func validateAccountType(fl validator.FieldLevel) bool {
	return domain.AccountType(fl.Field().String()).IsValid()
}
