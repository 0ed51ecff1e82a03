// util/validation_util.go

package util

import (
	"fmt"

	"github.com/accesskit/grantd/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateAccessRequest(req model.AccessRequest) error {
	if req.SubjectID == "" {
		return fmt.Errorf("access request subject cannot be empty")
	}
	if req.ResourceID == "" {
		return fmt.Errorf("access request resource cannot be empty")
	}
	if req.CustomSeconds < 0 {
		return fmt.Errorf("custom duration cannot be negative")
	}
	// Add more validation rules as needed
	return nil
}
