package entity

import (
	"time"
)

const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	FullName string `json:"full_name" firestore:"fullName"`
	Phone    string `json:"phone" firestore:"phone"`
	Role     string `json:"role" firestore:"role"`
	Status   string `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsSeller() bool {
	return u != nil && u.Role == RoleSeller
}

func (u *User) IsBuyer() bool {
	return u != nil && u.Role == RoleBuyer
}
