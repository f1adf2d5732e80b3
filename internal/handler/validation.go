package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/anesteasy/api/pkg/validator"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
			return
		}
		err = validator.Register(v)
	})
	return err
}
