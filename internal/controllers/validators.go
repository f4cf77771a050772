package controllers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"road_treatment/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the domain binding tags: material, priority,
// truck_status and role. It panics if a tag cannot be registered.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding engine is not a *validator.Validate")
		}
		rules := map[string]func(string) bool{
			"material":     models.ValidMaterial,
			"priority":     models.ValidPriority,
			"truck_status": models.ValidTruckStatus,
			"role":         models.ValidRole,
		}
		for tag, valid := range rules {
			err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return valid(fl.Field().String())
			})
			if err != nil {
				panic(fmt.Sprintf("register %s validator: %v", tag, err))
			}
		}
	})
}
