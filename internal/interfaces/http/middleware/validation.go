package middleware

import (
	"errors"
	"math"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tims/backend/internal/interfaces/http/dto"
)

// TransactionQuantityTag validates a stock transaction quantity against the
// sibling TransactionType field: adjustments take any non-zero delta, every
// other type needs a positive count. Magnitudes are capped at MaxInt32.
const TransactionQuantityTag = "transaction_quantity"

const maxTransactionQuantity = math.MaxInt32

const adjustmentType = "adjustment"

var setupOnce sync.Once

// SetupValidator configures gin's validator with json field names and the
// custom tags used by request DTOs. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation(TransactionQuantityTag, validateTransactionQuantity)
	})
}

func validateTransactionQuantity(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return false
	}
	q := field.Int()
	if q > maxTransactionQuantity || q < -maxTransactionQuantity {
		return false
	}

	txType := ""
	if parent := fl.Parent(); parent.Kind() == reflect.Struct {
		if f := parent.FieldByName("TransactionType"); f.IsValid() && f.Kind() == reflect.String {
			txType = f.String()
		}
	}
	if txType == adjustmentType {
		return q != 0
	}
	return q > 0
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case TransactionQuantityTag:
		return "Quantity must be positive, or non-zero for adjustments, and at most 2147483647 in magnitude"
	default:
		return "Invalid value"
	}
}
