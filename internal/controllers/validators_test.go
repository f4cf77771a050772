package controllers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestRegisterValidators_EnforcesDomainTags(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	type body struct {
		Material string `binding:"required,material"`
		Priority string `binding:"omitempty,priority"`
		Status   string `binding:"omitempty,truck_status"`
		Role     string `binding:"omitempty,role"`
	}

	assert.NoError(t, binding.Validator.ValidateStruct(body{Material: "salt", Priority: "urgent", Status: "maintenance", Role: "driver"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{Material: "gravel"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{Material: "sand", Priority: "critical"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{Material: "brine", Status: "parked"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{Material: "brine", Role: "superuser"}))
}
