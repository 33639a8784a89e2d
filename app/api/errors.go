package api

import (
	"errors"
	"fmt"
	"time"

	"courserag/app/agent"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	// generation failures are the only core errors that abort a query;
	// everything else on the retrieval path degrades to tool output
	var genErr *agent.GenerationError
	if errors.As(err, &genErr) {
		apiError := NewError(fiber.StatusBadGateway, genErr.Error())
		return c.Status(apiError.Code).JSON(apiError)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		apiError := NewError(fiberErr.Code, fiberErr.Message)
		return c.Status(apiError.Code).JSON(apiError)
	}

	apiError := NewError(fiber.StatusInternalServerError, err.Error())
	fmt.Printf("%s Request failed with code %d and message: %s\n", time.Now(), apiError.Code, apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}
