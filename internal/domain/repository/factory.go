package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Applications() ApplicationRepository
	Materials() MaterialRepository
	Ledger() LedgerRepository
	Reviews() ReviewRepository
	Messages() MessageRepository
	Transactor() Transactor
	HealthCheck(ctx context.Context) error
	Close()
}
