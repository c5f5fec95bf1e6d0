package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"examarchive/internal/common/cache"
	"examarchive/internal/common/db"
	"examarchive/internal/common/query"
)

const (
	defaultRecordTTL      = 10 * time.Minute
	defaultRecordEmptyTTL = 1 * time.Minute
	recordKeyPrefix       = "pastquestion:id:"
)

const pastQuestionColumns = "id, title, subject, class_name, year, file_key, file_name, mime_type, size, created_at"

// MySQLPastQuestionRepository persists past questions in MySQL, with an
// optional read-through cache on GetByID.
type MySQLPastQuestionRepository struct {
	db       db.Database
	cache    cache.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewMySQLPastQuestionRepository creates a MySQL-backed repository.
// cacheClient may be nil to disable caching.
func NewMySQLPastQuestionRepository(database db.Database, cacheClient cache.Cache) *MySQLPastQuestionRepository {
	return &MySQLPastQuestionRepository{
		db:       database,
		cache:    cacheClient,
		ttl:      defaultRecordTTL,
		emptyTTL: defaultRecordEmptyTTL,
	}
}

func (r *MySQLPastQuestionRepository) Create(ctx context.Context, record *PastQuestion) error {
	if record == nil {
		return errors.New("past question is nil")
	}

	q := `
		INSERT INTO past_questions (title, subject, class_name, year, file_key, file_name, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(ctx, q,
		record.Title,
		nullable(record.Subject),
		nullable(record.ClassName),
		nullable(record.Year),
		record.FileKey,
		record.FileName,
		record.MimeType,
		record.Size,
		record.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = id
	return nil
}

func (r *MySQLPastQuestionRepository) GetByID(ctx context.Context, id int64) (*PastQuestion, error) {
	if r.cache != nil {
		record, err := cache.GetWithCached[*PastQuestion](
			ctx,
			r.cache,
			recordKey(id),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(record *PastQuestion) bool { return record == nil },
			marshalPastQuestion,
			unmarshalPastQuestion,
			func(ctx context.Context) (*PastQuestion, error) {
				record, err := r.getByIDFromDB(ctx, id)
				if err != nil {
					if errors.Is(err, ErrPastQuestionNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return record, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, ErrPastQuestionNotFound
		}
		return record, nil
	}
	return r.getByIDFromDB(ctx, id)
}

func (r *MySQLPastQuestionRepository) getByIDFromDB(ctx context.Context, id int64) (*PastQuestion, error) {
	q := "SELECT " + pastQuestionColumns + " FROM past_questions WHERE id = ?"
	record, err := scanPastQuestion(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrPastQuestionNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *MySQLPastQuestionRepository) List(ctx context.Context, filter query.Filter) (ListResult, error) {
	filter = filter.Normalized()

	where, args := buildPastQuestionWhere(filter)

	countQuery := "SELECT COUNT(*) FROM past_questions" + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	listQuery := "SELECT " + pastQuestionColumns + " FROM past_questions" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	listArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return ListResult{}, err
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]*PastQuestion, 0, filter.Limit)
	for rows.Next() {
		record, err := scanPastQuestion(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total}, nil
}

func (r *MySQLPastQuestionRepository) Delete(ctx context.Context, id int64) (*PastQuestion, error) {
	record, err := r.getByIDFromDB(ctx, id)
	if err != nil {
		return nil, err
	}

	err = cache.DeleteCached(ctx, r.cacheOrNoop(), recordKey(id), func(ctx context.Context) error {
		result, err := r.db.Exec(ctx, "DELETE FROM past_questions WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrPastQuestionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// buildPastQuestionWhere translates the filter into SQL predicates: full-text
// match for the free-text query, case-insensitive LIKE for subject and class
// name, exact equality for year.
func buildPastQuestionWhere(filter query.Filter) (string, []interface{}) {
	clauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.Q != "" {
		clauses = append(clauses, "MATCH(title, subject) AGAINST (? IN NATURAL LANGUAGE MODE)")
		args = append(args, filter.Q)
	}
	if filter.Year != "" {
		clauses = append(clauses, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Subject != "" {
		clauses = append(clauses, "subject LIKE CONCAT('%', ?, '%')")
		args = append(args, filter.Subject)
	}
	if filter.ClassName != "" {
		clauses = append(clauses, "class_name LIKE CONCAT('%', ?, '%')")
		args = append(args, filter.ClassName)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPastQuestion(row rowScanner) (*PastQuestion, error) {
	var record PastQuestion
	var subject, className, year sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.Title,
		&subject,
		&className,
		&year,
		&record.FileKey,
		&record.FileName,
		&record.MimeType,
		&record.Size,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	record.Subject = subject.String
	record.ClassName = className.String
	record.Year = year.String
	return &record, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func recordKey(id int64) string {
	return recordKeyPrefix + strconv.FormatInt(id, 10)
}

func marshalPastQuestion(record *PastQuestion) string {
	data, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalPastQuestion(data string) (*PastQuestion, error) {
	var record PastQuestion
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// cacheOrNoop lets Delete share the invalidation helper even when caching
// is disabled.
func (r *MySQLPastQuestionRepository) cacheOrNoop() cache.Cache {
	if r.cache != nil {
		return r.cache
	}
	return noopCache{}
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (noopCache) Del(ctx context.Context, keys ...string) error {
	return nil
}

func (noopCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	return 0, nil
}

func (noopCache) Ping(ctx context.Context) error {
	return nil
}

func (noopCache) Close() error {
	return nil
}
