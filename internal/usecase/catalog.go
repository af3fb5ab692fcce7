package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

var (
	// ErrMovieNotFound indicates the movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrMovieExists indicates a movie with the same name, year, and
	// runtime already exists.
	ErrMovieExists = errors.New("a movie with this name, year, and duration already exists")
	// ErrMovieInCart indicates the movie cannot be deleted while it sits in
	// at least one user's cart.
	ErrMovieInCart = errors.New("movie is present in user carts and cannot be deleted")
	// ErrMovieNameRequired indicates a blank movie name.
	ErrMovieNameRequired = errors.New("movie name is required")
	// ErrCertificationRequired indicates a blank certification name.
	ErrCertificationRequired = errors.New("certification is required")
	// ErrLookupNotFound indicates the lookup entry does not exist.
	ErrLookupNotFound = errors.New("entry not found")
	// ErrLookupExists indicates the lookup name is already taken.
	ErrLookupExists = errors.New("an entry with this name already exists")
	// ErrLookupNameRequired indicates a blank lookup name.
	ErrLookupNameRequired = errors.New("name is required")
)

// MoviePage is one page of catalog results with the total for pagination.
type MoviePage struct {
	Movies     []domain.Movie
	TotalItems int
}

// MovieService manages the movie catalog.
type MovieService struct {
	movies port.MovieRepository
	logger *zap.Logger
}

func NewMovieService(movies port.MovieRepository, log *zap.Logger) *MovieService {
	return &MovieService{movies: movies, logger: log}
}

// List returns one page of movies matching the filter plus the unpaged total.
func (s *MovieService) List(ctx context.Context, filter port.MovieFilter) (*MoviePage, error) {
	total, err := s.movies.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	movies, err := s.movies.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &MoviePage{Movies: movies, TotalItems: total}, nil
}

func (s *MovieService) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

// Create adds a movie. The (name, year, time) triple must be unique; the
// named associations are created on first use.
func (s *MovieService) Create(ctx context.Context, input port.MovieInput) (*domain.Movie, error) {
	input.Movie.Name = strings.TrimSpace(input.Movie.Name)
	if input.Movie.Name == "" {
		return nil, ErrMovieNameRequired
	}
	input.Certification = strings.TrimSpace(input.Certification)
	if input.Certification == "" {
		return nil, ErrCertificationRequired
	}

	exists, err := s.movies.ExistsByTriple(ctx, input.Movie.Name, input.Movie.Year, input.Movie.Time)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMovieExists
	}

	if input.Movie.UUID == "" {
		input.Movie.UUID = uuid.NewString()
	}

	id, err := s.movies.Create(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMovieExists
		}
		return nil, err
	}

	s.logger.Info("Movie created", zap.Int64("movie_id", id), zap.String("name", input.Movie.Name))

	return s.Get(ctx, id)
}

// Update replaces the movie's scalar attributes.
func (s *MovieService) Update(ctx context.Context, movie domain.Movie) (*domain.Movie, error) {
	movie.Name = strings.TrimSpace(movie.Name)
	if movie.Name == "" {
		return nil, ErrMovieNameRequired
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMovieNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrMovieExists
		}
		return nil, err
	}

	return s.Get(ctx, movie.ID)
}

// Delete removes a movie unless it currently sits in someone's cart.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	inCart, err := s.movies.InAnyCart(ctx, id)
	if err != nil {
		return err
	}
	if inCart {
		return ErrMovieInCart
	}

	if err := s.movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovieNotFound
		}
		return err
	}

	return nil
}

// LookupPage is one page of lookup entries with the total for pagination.
type LookupPage struct {
	Entries    []domain.NamedEntity
	TotalItems int
}

// LookupService manages one name-keyed lookup collection. The same service
// backs genres, stars, directors, and certifications.
type LookupService struct {
	repo port.LookupRepository
}

func NewLookupService(repo port.LookupRepository) *LookupService {
	return &LookupService{repo: repo}
}

func (s *LookupService) List(ctx context.Context, limit, offset int) (*LookupPage, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return &LookupPage{Entries: entries, TotalItems: total}, nil
}

func (s *LookupService) Get(ctx context.Context, id int64) (*domain.NamedEntity, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLookupNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (s *LookupService) Create(ctx context.Context, name string) (*domain.NamedEntity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLookupNameRequired
	}

	id, err := s.repo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrLookupExists
		}
		return nil, err
	}

	return &domain.NamedEntity{ID: id, Name: name}, nil
}

func (s *LookupService) Rename(ctx context.Context, id int64, name string) (*domain.NamedEntity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLookupNameRequired
	}

	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrLookupNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrLookupExists
		}
		return nil, err
	}

	return &domain.NamedEntity{ID: id, Name: name}, nil
}

func (s *LookupService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLookupNotFound
		}
		return err
	}
	return nil
}
