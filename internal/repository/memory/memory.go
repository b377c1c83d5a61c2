// Package memory holds in-process repositories with the same contracts as the
// Mongo ones. Tests use them in place of a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"simple-shop/internal/model"
	"simple-shop/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountRepository enforces the same per-role unique email guarantee as the
// Mongo indexes.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[model.Role]map[primitive.ObjectID]model.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: map[model.Role]map[primitive.ObjectID]model.Account{
			model.RoleCustomer: {},
			model.RoleSeller:   {},
		},
	}
}

func (r *AccountRepository) FindByEmail(_ context.Context, role model.Role, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.accounts[role]
	if !ok {
		return nil, fmt.Errorf("unknown account role %q", role)
	}
	for _, a := range set {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *AccountRepository) FindByID(_ context.Context, role model.Role, id primitive.ObjectID) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[role][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AccountRepository) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.accounts[account.Role]
	if !ok {
		return fmt.Errorf("unknown account role %q", account.Role)
	}
	for _, a := range set {
		if a.Email == account.Email {
			return fmt.Errorf("%w: email %s", repository.ErrDuplicateKey, account.Email)
		}
	}
	account.ID = primitive.NewObjectID()
	set[account.ID] = *account
	return nil
}

// Count returns the number of stored accounts of role.
func (r *AccountRepository) Count(role model.Role) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts[role])
}

type CategoryRepository struct {
	mu         sync.Mutex
	order      []primitive.ObjectID
	categories map[primitive.ObjectID]model.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: map[primitive.ObjectID]model.Category{}}
}

func (r *CategoryRepository) Insert(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt, category.UpdatedAt = ts, ts
	r.categories[category.ID] = *category
	r.order = append(r.order, category.ID)
	return nil
}

func (r *CategoryRepository) FindAll(_ context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Category, 0, len(r.categories))
	for _, id := range r.order {
		if c, ok := r.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) Update(_ context.Context, id primitive.ObjectID, name, description string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Name, c.Description, c.UpdatedAt = name, description, now()
	r.categories[id] = c
	return &c, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type ProductRepository struct {
	mu       sync.Mutex
	products []model.Product
	// FailInsert, when set, is returned by Insert.
	FailInsert error
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) Insert(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInsert != nil {
		return r.FailInsert
	}
	ts := now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt, product.UpdatedAt = ts, ts
	r.products = append(r.products, *product)
	return nil
}

func (r *ProductRepository) FindAll(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
