package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"simple-shop/internal/events"
	"simple-shop/internal/logger"
	"simple-shop/internal/model"
	"simple-shop/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,simple_email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
}

func (in *RegisterInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Address = strings.TrimSpace(in.Address)
	in.Role = strings.TrimSpace(in.Role)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountService runs registration and login for one actor type.
type AccountService struct {
	role      model.Role
	store     AccountStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	publisher events.Publisher

	decoyOnce   sync.Once
	decoyDigest string
}

var AccountServiceTracer = otel.Tracer("AccountService")

func NewAccountService(role model.Role, store AccountStore, hasher PasswordHasher, tokens TokenIssuer, publisher events.Publisher) *AccountService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AccountService{
		role:      role,
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
	}
}

func (s *AccountService) Role() model.Role {
	return s.role
}

func (s *AccountService) validateRegistration(in RegisterInput) error {
	if s.role == model.RoleSeller && (in.PhoneNumber == "" || in.Address == "") {
		return model.ValidationError(msgFillFields)
	}
	if err := validateStruct(in); err != nil {
		return err
	}
	if len(in.Password) > maxPasswordBytes {
		return model.ValidationError(msgPasswordTooBig)
	}
	if in.Role != "" && in.Role != string(s.role) {
		return model.ValidationError(msgInvalidRole)
	}
	return nil
}

// Register creates a new account of the service's actor type and returns it.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	ctx, span := AccountServiceTracer.Start(ctx, "AccountService.Register")
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(s.role)))
	logger.Info(ctx, "Service")

	in.trim()
	if err := s.validateRegistration(in); err != nil {
		return nil, err
	}

	conflict := model.ConflictError(s.role.Label() + " already exists. Please sign in")

	existing, err := s.store.FindByEmail(ctx, s.role, in.Email)
	if err != nil {
		return nil, model.InternalError(err)
	}
	if existing != nil {
		return nil, conflict
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, model.InternalError(err)
	}

	account := &model.Account{
		Name:        in.Name,
		Email:       in.Email,
		Password:    digest,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Role:        s.role,
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, conflict
		}
		return nil, model.InternalError(err)
	}

	logger.Info(ctx, "Account registered",
		slog.String("account_id", account.ID.Hex()),
		slog.String("role", string(s.role)),
	)
	events.Emit(ctx, s.publisher, events.New(events.AccountRegistered, account.ID.Hex(), map[string]string{
		"id":   account.ID.Hex(),
		"role": string(s.role),
	}))

	return account, nil
}

// Login checks credentials and returns a signed identity token. Unknown
// emails and wrong passwords produce the same error.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	ctx, span := AccountServiceTracer.Start(ctx, "AccountService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(s.role)))
	logger.Info(ctx, "Service")

	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := validateStruct(in); err != nil {
		return "", err
	}

	account, err := s.store.FindByEmail(ctx, s.role, in.Email)
	if err != nil {
		return "", model.InternalError(err)
	}
	if account == nil {
		// Unknown emails still pay for one digest comparison.
		s.hasher.Verify(in.Password, s.decoy())
		return "", model.AuthError(msgBadCredentials)
	}
	if !s.hasher.Verify(in.Password, account.Password) {
		return "", model.AuthError(msgBadCredentials)
	}

	token, err := s.tokens.Issue(account.ID.Hex(), account.Name, string(account.Role))
	if err != nil {
		return "", model.InternalError(err)
	}
	return token, nil
}

// decoy returns a digest produced by the service's hasher that no trimmed
// password can match.
func (s *AccountService) decoy() string {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			logger.Warn(context.Background(), "Failed to prepare login decoy digest", slog.String("error", err.Error()))
			return
		}
		s.decoyDigest = digest
	})
	return s.decoyDigest
}

// Me loads the account identified by a token subject.
func (s *AccountService) Me(ctx context.Context, subject string) (*model.Account, error) {
	ctx, span := AccountServiceTracer.Start(ctx, "AccountService.Me")
	defer span.End()
	logger.Info(ctx, "Service")

	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, model.AuthError(msgBadCredentials)
	}

	account, err := s.store.FindByID(ctx, s.role, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NotFoundError(s.role.Label() + " not found")
	}
	if err != nil {
		return nil, model.InternalError(err)
	}
	return account, nil
}
