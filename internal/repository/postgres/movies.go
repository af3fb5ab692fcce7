package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

// MovieRepository implements port.MovieRepository backed by PostgreSQL.
// Catalog associations (genres, stars, directors) live in join tables and
// are loaded in bulk for listings.
type MovieRepository struct {
	db      pgBeginner
	builder squirrel.StatementBuilderType
}

func NewMovieRepository(db pgBeginner) *MovieRepository {
	return &MovieRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MovieRepository) filterConditions(filter port.MovieFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer

	if filter.Year != nil {
		conds = append(conds, squirrel.Eq{"m.year": *filter.Year})
	}
	if filter.IMDb != nil {
		conds = append(conds, squirrel.GtOrEq{"m.imdb": *filter.IMDb})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"m.name": pattern},
			squirrel.ILike{"m.description": pattern},
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM movie_stars ms JOIN stars s ON s.id = ms.star_id WHERE ms.movie_id = m.id AND s.name ILIKE ?)",
				pattern,
			),
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM movie_directors md JOIN directors d ON d.id = md.director_id WHERE md.movie_id = m.id AND d.name ILIKE ?)",
				pattern,
			),
		})
	}

	return conds
}

func (r *MovieRepository) orderClause(filter port.MovieFilter) string {
	column := "m.id"
	switch filter.SortBy {
	case port.MovieSortPrice:
		column = "m.price"
	case port.MovieSortTime:
		column = "m.time"
	case port.MovieSortVotes:
		column = "m.votes"
	case port.MovieSortID, "":
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s", column, direction)
}

func (r *MovieRepository) List(ctx context.Context, filter port.MovieFilter) ([]domain.Movie, error) {
	builder := r.builder.Select(
		"m.id",
		"m.uuid",
		"m.name",
		"m.year",
		"m.time",
		"m.imdb",
		"m.votes",
		"m.meta_score",
		"m.gross",
		"m.description",
		"m.price",
		"m.certification_id",
		"c.name",
	).
		From("movies m").
		Join("certifications c ON c.id = m.certification_id").
		OrderBy(r.orderClause(filter))

	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movies: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}

	if err := r.attachAssociations(ctx, movies); err != nil {
		return nil, err
	}

	return movies, nil
}

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.UUID,
		&movie.Name,
		&movie.Year,
		&movie.Time,
		&movie.IMDb,
		&movie.Votes,
		&movie.MetaScore,
		&movie.Gross,
		&movie.Description,
		&movie.Price,
		&movie.CertificationID,
		&movie.Certification.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("scan movie: %w", err)
	}
	movie.Certification.ID = movie.CertificationID
	return &movie, nil
}

// attachAssociations bulk-loads genres, stars, and directors for the listed
// movies to avoid per-movie queries.
func (r *MovieRepository) attachAssociations(ctx context.Context, movies []domain.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	ids := make([]int64, len(movies))
	index := make(map[int64]*domain.Movie, len(movies))
	for i := range movies {
		ids[i] = movies[i].ID
		index[movies[i].ID] = &movies[i]
	}

	type association struct {
		join   string
		joinFK string
		entity string
		assign func(m *domain.Movie, e domain.NamedEntity)
	}

	associations := []association{
		{"movie_genres", "genre_id", "genres", func(m *domain.Movie, e domain.NamedEntity) { m.Genres = append(m.Genres, e) }},
		{"movie_stars", "star_id", "stars", func(m *domain.Movie, e domain.NamedEntity) { m.Stars = append(m.Stars, e) }},
		{"movie_directors", "director_id", "directors", func(m *domain.Movie, e domain.NamedEntity) { m.Directors = append(m.Directors, e) }},
	}

	for _, assoc := range associations {
		sqlStmt, args, err := r.builder.Select("j.movie_id", "e.id", "e.name").
			From(assoc.join+" j").
			Join(fmt.Sprintf("%s e ON e.id = j.%s", assoc.entity, assoc.joinFK)).
			Where(squirrel.Eq{"j.movie_id": ids}).
			OrderBy("e.name").
			ToSql()
		if err != nil {
			return fmt.Errorf("build load %s: %w", assoc.entity, err)
		}

		rows, err := r.db.Query(ctx, sqlStmt, args...)
		if err != nil {
			return fmt.Errorf("load %s: %w", assoc.entity, err)
		}

		for rows.Next() {
			var movieID int64
			var entity domain.NamedEntity
			if err := rows.Scan(&movieID, &entity.ID, &entity.Name); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s row: %w", assoc.entity, err)
			}
			if movie, ok := index[movieID]; ok {
				assoc.assign(movie, entity)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate %s rows: %w", assoc.entity, err)
		}
	}

	return nil
}

func (r *MovieRepository) Count(ctx context.Context, filter port.MovieFilter) (int, error) {
	builder := r.builder.Select("COUNT(*)").From("movies m")
	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count movies: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sqlStmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return count, nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	sqlStmt, args, err := r.builder.Select(
		"m.id",
		"m.uuid",
		"m.name",
		"m.year",
		"m.time",
		"m.imdb",
		"m.votes",
		"m.meta_score",
		"m.gross",
		"m.description",
		"m.price",
		"m.certification_id",
		"c.name",
	).
		From("movies m").
		Join("certifications c ON c.id = m.certification_id").
		Where(squirrel.Eq{"m.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select movie: %w", err)
	}

	movie, err := scanMovie(r.db.QueryRow(ctx, sqlStmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	movies := []domain.Movie{*movie}
	if err := r.attachAssociations(ctx, movies); err != nil {
		return nil, err
	}

	return &movies[0], nil
}

func (r *MovieRepository) ExistsByTriple(ctx context.Context, name string, year, runtime int) (bool, error) {
	sqlStmt, args, err := r.builder.Select("1").
		From("movies").
		Where(squirrel.Eq{"name": name, "year": year, "time": runtime}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build movie exists: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sqlStmt, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}

	return true, nil
}

// Create writes the movie, its certification, and all named associations in
// one transaction, creating lookup rows on first use.
func (r *MovieRepository) Create(ctx context.Context, input port.MovieInput) (int64, error) {
	var movieID int64

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		certID, err := r.getOrCreateNamed(ctx, tx, "certifications", input.Certification)
		if err != nil {
			return err
		}

		sqlStmt, args, err := r.builder.Insert("movies").
			Columns("uuid", "name", "year", "time", "imdb", "votes", "meta_score", "gross", "description", "price", "certification_id").
			Values(
				input.Movie.UUID,
				input.Movie.Name,
				input.Movie.Year,
				input.Movie.Time,
				input.Movie.IMDb,
				input.Movie.Votes,
				input.Movie.MetaScore,
				input.Movie.Gross,
				input.Movie.Description,
				input.Movie.Price,
				certID,
			).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert movie: %w", err)
		}

		if err := tx.QueryRow(ctx, sqlStmt, args...).Scan(&movieID); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("insert movie: %w", err)
		}

		links := []struct {
			entity string
			join   string
			fk     string
			names  []string
		}{
			{"genres", "movie_genres", "genre_id", input.Genres},
			{"stars", "movie_stars", "star_id", input.Stars},
			{"directors", "movie_directors", "director_id", input.Directors},
		}

		for _, link := range links {
			for _, name := range link.names {
				entityID, err := r.getOrCreateNamed(ctx, tx, link.entity, name)
				if err != nil {
					return err
				}

				sqlStmt, args, err := r.builder.Insert(link.join).
					Columns("movie_id", link.fk).
					Values(movieID, entityID).
					Suffix(fmt.Sprintf("ON CONFLICT (movie_id, %s) DO NOTHING", link.fk)).
					ToSql()
				if err != nil {
					return fmt.Errorf("build link %s: %w", link.join, err)
				}
				if _, err := tx.Exec(ctx, sqlStmt, args...); err != nil {
					return fmt.Errorf("link %s: %w", link.join, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return movieID, nil
}

// getOrCreateNamed resolves a lookup row id by name, creating it on first
// use. The upsert always returns the id, even for pre-existing rows.
func (r *MovieRepository) getOrCreateNamed(ctx context.Context, tx pgx.Tx, table, name string) (int64, error) {
	sqlStmt, args, err := r.builder.Insert(table).
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build get-or-create %s: %w", table, err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sqlStmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("get-or-create %s: %w", table, err)
	}

	return id, nil
}

func (r *MovieRepository) Update(ctx context.Context, movie domain.Movie) error {
	sqlStmt, args, err := r.builder.Update("movies").
		Set("name", movie.Name).
		Set("year", movie.Year).
		Set("time", movie.Time).
		Set("imdb", movie.IMDb).
		Set("votes", movie.Votes).
		Set("meta_score", movie.MetaScore).
		Set("gross", movie.Gross).
		Set("description", movie.Description).
		Set("price", movie.Price).
		Where(squirrel.Eq{"id": movie.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update movie: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	sqlStmt, args, err := r.builder.Delete("movies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete movie: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// InAnyCart reports whether the movie currently sits in any user's cart.
func (r *MovieRepository) InAnyCart(ctx context.Context, movieID int64) (bool, error) {
	sqlStmt, args, err := r.builder.Select("1").
		From("cart_items").
		Where(squirrel.Eq{"movie_id": movieID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build movie in cart: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sqlStmt, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("movie in cart: %w", err)
	}

	return true, nil
}

var _ port.MovieRepository = (*MovieRepository)(nil)
