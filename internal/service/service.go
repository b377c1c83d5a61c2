package service

import (
	"context"
	"errors"
	"regexp"

	"simple-shop/internal/model"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgFillFields     = "Please fill all fields"
	msgPasswordLength = "Password must be at least 6 characters"
	msgPasswordTooBig = "Password must be at most 72 bytes"
	msgInvalidEmail   = "Invalid email format"
	msgInvalidRole    = "Invalid role"
	msgBadCredentials = "Invalid credentials"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

type AccountStore interface {
	FindByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error)
	FindByID(ctx context.Context, role model.Role, id primitive.ObjectID) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
}

type CategoryStore interface {
	Insert(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, name, description string) (*model.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	Insert(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type TokenIssuer interface {
	Issue(subject, name, role string) (string, error)
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// tagMessages is ordered by precedence: a missing field is reported before a
// short password, which is reported before a malformed email.
var tagMessages = []struct {
	tag     string
	message string
}{
	{"required", msgFillFields},
	{"min", msgPasswordLength},
	{"simple_email", msgInvalidEmail},
}

// validateStruct runs the struct tags of v and converts the first failure by
// precedence into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.InternalError(err)
	}

	for _, tm := range tagMessages {
		for _, fe := range fieldErrs {
			if fe.Tag() == tm.tag {
				return model.ValidationError(tm.message)
			}
		}
	}
	return model.ValidationError(fieldErrs[0].Error())
}
