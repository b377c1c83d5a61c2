package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role tags an account with the actor type that owns it.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

// Label is the capitalised actor name used in user-facing messages.
func (r Role) Label() string {
	if r == RoleSeller {
		return "Seller"
	}
	return "User"
}

type Account struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	PhoneNumber string             `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Role        Role               `json:"role" bson:"role"`
}
