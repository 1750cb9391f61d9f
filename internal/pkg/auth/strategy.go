package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

type Strategy interface {
	IssueToken(userID uuid.UUID, role model.Role) (string, error)
	ParseToken(token string) (model.Actor, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
