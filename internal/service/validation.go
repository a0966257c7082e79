package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"turnero/internal/entities"
	apperrors "turnero/internal/errors"
	"turnero/internal/utils"
)

var validate = validator.New()

func normalizeAppointmentRequest(req entities.AppointmentRequest) entities.AppointmentRequest {
	return entities.AppointmentRequest{
		Date:  strings.TrimSpace(req.Date),
		Time:  strings.TrimSpace(req.Time),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	}
}

func validateAppointmentRequest(req entities.AppointmentRequest) error {
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.ErrValidation(err.Error())
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return apperrors.ErrValidation("all required fields must be filled")
			}
		}
		return apperrors.ErrValidation("invalid email address")
	}
	if _, _, _, err := utils.ParseDate(req.Date); err != nil {
		return apperrors.ErrValidation(err.Error())
	}
	return nil
}
