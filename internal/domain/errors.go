package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: обязательное поле отсутствует, пустое или вне допустимого диапазона.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateOrderID возвращается при попытке создать заказ с занятым order_id.
	ErrDuplicateOrderID = errors.New("order already exists")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus: значение статуса вне перечисления.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrConfiguration: трекер собран с некорректными зависимостями.
	ErrConfiguration = errors.New("invalid configuration")
)

// ValidationError указывает поле, нарушившее ограничение.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError создаёт ошибку валидации для поля.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidStatusError хранит отклонённое значение статуса.
// Одновременно считается ошибкой валидации поля status.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: %q (allowed: pending, shipped, delivered, cancelled)", ErrInvalidStatus, e.Value)
}

func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidStatus
}

// Is позволяет сопоставить ошибку и с ErrValidation.
func (e *InvalidStatusError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateOrderError: заказ с таким идентификатором уже существует.
type DuplicateOrderError struct {
	OrderID string
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateOrderID, e.OrderID)
}

func (e *DuplicateOrderError) Unwrap() error {
	return ErrDuplicateOrderID
}

// NotFoundError: операция сослалась на несуществующий заказ.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrOrderNotFound, e.OrderID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrOrderNotFound
}

// ConfigurationError возникает при сборке трекера, а не при вызове операций.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ValidationField возвращает имя поля из ошибки валидации, если оно известно.
func ValidationField(err error) (string, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Field, true
	}
	var statusErr *InvalidStatusError
	if errors.As(err, &statusErr) {
		return "status", true
	}
	return "", false
}

// IsNotFound проверяет, что ошибка означает отсутствие заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsDuplicate проверяет, что ошибка означает занятый order_id.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateOrderID)
}
