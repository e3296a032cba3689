// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	contentIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-.:]{0,127}$`)
	registerOnce     sync.Once
	registerErr      error
)

// Register installs the custom tags on gin's validator. Safe to call from
// every service and every test.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags on v.
//
//	contentid  external catalog id, bare ("1399") or namespaced ("tv-1399")
//	notblank   string with at least one non-space character
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("contentid", func(fl validator.FieldLevel) bool {
		return contentIDPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
