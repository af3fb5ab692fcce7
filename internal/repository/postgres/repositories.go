package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users          *UserRepository
	Groups         *GroupRepository
	Tokens         *TokenRepository
	Movies         *MovieRepository
	Genres         *LookupRepository
	Stars          *LookupRepository
	Directors      *LookupRepository
	Certifications *LookupRepository
	Carts          *CartRepository
	Orders         *OrderRepository
	Payments       *PaymentRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(pool),
		Groups:         NewGroupRepository(pool),
		Tokens:         NewTokenRepository(pool),
		Movies:         NewMovieRepository(pool),
		Genres:         NewLookupRepository(pool, "genres"),
		Stars:          NewLookupRepository(pool, "stars"),
		Directors:      NewLookupRepository(pool, "directors"),
		Certifications: NewLookupRepository(pool, "certifications"),
		Carts:          NewCartRepository(pool),
		Orders:         NewOrderRepository(pool),
		Payments:       NewPaymentRepository(pool),
	}
}
