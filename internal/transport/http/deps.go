package http

import (
	"github.com/rarepair-api/internal/application/verification"
	"github.com/rarepair-api/internal/infrastructure/allocation"
	"github.com/rarepair-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/rarepair-api/internal/infrastructure/jwt"
	s3infra "github.com/rarepair-api/internal/infrastructure/s3"
	"github.com/rarepair-api/internal/infrastructure/smtp"
	"github.com/rarepair-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	HospitalRepo     *dynamo.HospitalRepo
	MatchRepo        *dynamo.MatchRepo
	NotificationRepo *dynamo.NotificationRepo
	DocumentRepo     *dynamo.DocumentRepo
	// CodeStore is either the in-process store or the DynamoDB-backed one,
	// selected by configuration.
	CodeStore   verification.CodeStore
	S3Store     *s3infra.Store
	Scorer      allocation.Scorer
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}
