package http

import (
	"github.com/admin-console-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/admin-console-api/internal/infrastructure/jwt"
	"github.com/admin-console-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo     *dynamo.AccountRepo
	TransactionRepo *dynamo.TransactionRepo
	TaskRepo        *dynamo.TaskRepo
	CouponRepo      *dynamo.CouponRepo
	OperatorRepo    *dynamo.OperatorRepo
	Mailer          smtp.Mailer
	JWTProvider     *jwtinfra.Provider
}
