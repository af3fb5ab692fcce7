package port

import (
	"context"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// LookupRepository manages one name-keyed lookup table (genres, stars,
// directors or certifications).
type LookupRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.NamedEntity, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int64) (*domain.NamedEntity, error)
	Create(ctx context.Context, name string) (int64, error)
	UpdateName(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// MovieSort is the allow-list of movie list sort columns.
type MovieSort string

const (
	MovieSortID    MovieSort = "id"
	MovieSortPrice MovieSort = "price"
	MovieSortTime  MovieSort = "time"
	MovieSortVotes MovieSort = "votes"
)

// MovieFilter captures list query parameters for the movie catalog.
type MovieFilter struct {
	Year       *int
	IMDb       *float64
	Search     string
	SortBy     MovieSort
	Descending bool
	Limit      int
	Offset     int
}

// MovieInput carries the association names resolved during movie creation.
type MovieInput struct {
	Movie         domain.Movie
	Certification string
	Genres        []string
	Stars         []string
	Directors     []string
}

// MovieRepository persists movies and their catalog associations. Create
// performs get-or-create on the association names and writes the movie and
// its join rows in one transaction.
type MovieRepository interface {
	List(ctx context.Context, filter MovieFilter) ([]domain.Movie, error)
	Count(ctx context.Context, filter MovieFilter) (int, error)
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	ExistsByTriple(ctx context.Context, name string, year, runtime int) (bool, error)
	Create(ctx context.Context, input MovieInput) (int64, error)
	Update(ctx context.Context, movie domain.Movie) error
	Delete(ctx context.Context, id int64) error
	InAnyCart(ctx context.Context, movieID int64) (bool, error)
}
