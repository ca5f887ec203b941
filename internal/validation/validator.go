package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/project-board-api/internal/models"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of field errors usable as an error value
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Message)
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil for an empty list, else the list wrapped as an error
// matching models.ErrInvalidInput.
func Err(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", models.ErrInvalidInput, Errors(errs))
}

// Validator validates request structs by their `validate` tags and strips
// markup from user supplied text.
type Validator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("email_addr", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDRegex.MatchString(fl.Field().String())
	})

	return &Validator{
		validate: v,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Sanitize strips HTML elements from s and returns the remaining text
// unescaped and trimmed. Literal '&' and an unclosed trailing '<' are kept.
func (v *Validator) Sanitize(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	if i := strings.LastIndexByte(s, '>'); strings.ContainsRune(s[i+1:], '<') {
		s = s[:i+1] + strings.ReplaceAll(s[i+1:], "<", "&lt;")
	}
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

// Validate checks s against its struct tags
func (v *Validator) Validate(s interface{}) []ValidationError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, toValidationError(fe))
	}
	return errs
}

// ValidateArticle sanitizes the request in place and validates it
func (v *Validator) ValidateArticle(req *models.ArticleRequest) []ValidationError {
	req.Title = v.Sanitize(req.Title)
	req.Content = v.Sanitize(req.Content)
	return v.Validate(req)
}

// ValidateArticleUpdate sanitizes the request in place and validates it.
// At least one field must be present.
func (v *Validator) ValidateArticleUpdate(req *models.ArticleUpdateRequest) []ValidationError {
	req.Title = v.Sanitize(req.Title)
	req.Content = v.Sanitize(req.Content)
	errs := v.Validate(req)
	if req.Title == "" && req.Content == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title or content is required"})
	}
	return errs
}

// ValidateComment sanitizes the request in place and validates it
func (v *Validator) ValidateComment(req *models.CommentRequest) []ValidationError {
	req.Content = v.Sanitize(req.Content)
	return v.Validate(req)
}

// ValidateCommentUpdate sanitizes the request in place and validates it
func (v *Validator) ValidateCommentUpdate(req *models.CommentUpdateRequest) []ValidationError {
	req.Content = v.Sanitize(req.Content)
	return v.Validate(req)
}

// ValidateSignup sanitizes free text fields and validates the request
func (v *Validator) ValidateSignup(req *models.SignupRequest) []ValidationError {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Email = strings.TrimSpace(req.Email)
	req.Nickname = v.Sanitize(req.Nickname)
	req.Memo = v.Sanitize(req.Memo)
	return v.Validate(req)
}

func toValidationError(fe validator.FieldError) ValidationError {
	field := fe.Field()
	ve := ValidationError{Field: field}

	switch fe.Tag() {
	case "required":
		ve.Message = fmt.Sprintf("%s is required", field)
		return ve
	case "max":
		ve.Message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		ve.Message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gt":
		ve.Message = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email_addr":
		ve.Message = "invalid email format"
	case "userid":
		ve.Message = fmt.Sprintf("%s must be 3-50 letters, digits or underscores", field)
	default:
		ve.Message = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}

	// long bodies are not echoed back
	if s, ok := fe.Value().(string); ok && len(s) > 100 {
		return ve
	}
	ve.Value = fe.Value()
	return ve
}
