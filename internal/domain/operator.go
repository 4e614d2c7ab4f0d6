package domain

import "time"

// RoleAdmin is the privilege claim required by every console operation.
const RoleAdmin = "admin"

// Operator is a console login identity, distinct from platform accounts.
type Operator struct {
	OperatorID   string    `json:"id" dynamodbav:"operator_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	Name         string    `json:"name" dynamodbav:"name"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
