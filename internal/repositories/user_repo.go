package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// classificationBatchSize bounds how many projected documents one
// classification-scan read fetches.
const classificationBatchSize = 1000

// UserRepository reads the user directory and applies administrative
// mutations to it.
type UserRepository struct {
	col store.Collection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(st store.Store) *UserRepository {
	return &UserRepository{col: st.Collection(CollectionUsers)}
}

// userFromDoc populates a User model from a document, handling absent and
// nullable fields.
func userFromDoc(d store.Document) *models.User {
	return &models.User{
		ID:          d.ID(),
		Email:       d.String(directory.FieldEmail),
		Name:        d.String(directory.FieldName),
		Role:        d.String(directory.FieldRole),
		Plan:        d.String(directory.FieldPlan),
		Deleted:     d.Bool(directory.FieldDeleted),
		DeletedAt:   d.TimePtr("deletedAt"),
		LockedUntil: d.TimePtr(directory.FieldLockedUntil),
		LastLoginAt: d.TimePtr(directory.FieldLastLogin),
		CreatedAt:   d.Time(directory.FieldCreatedAt),
		UpdatedAt:   d.Time(directory.FieldUpdatedAt),
	}
}

// FindPage executes a compiled directory query as one page. The page fetch
// and the approximate total count are independent reads and run
// concurrently. The total comes from the store's fast count and can disagree
// with what is actually paginable; that skew is accepted, not fixed.
func (r *UserRepository) FindPage(ctx context.Context, q store.Query, page, limit int) (*models.UserPage, error) {
	var (
		docs    []store.Document
		hasMore bool
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, hasMore, err = directory.Paginate(gctx, r.col, q, page, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = r.col.Count(gctx, q.Predicates)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, userFromDoc(d))
	}
	return &models.UserPage{Users: users, HasMore: hasMore, ApproxTotal: total}, nil
}

// GetByID fetches a single user, soft-deleted ones included.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	d, err := r.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return userFromDoc(d), nil
}

// Update applies a partial administrative update and stamps updatedAt.
func (r *UserRepository) Update(ctx context.Context, id string, patch models.UserPatch, now time.Time) error {
	fields := store.Document{directory.FieldUpdatedAt: now.UTC()}
	if patch.Name != nil {
		fields[directory.FieldName] = *patch.Name
	}
	if patch.Role != nil {
		fields[directory.FieldRole] = *patch.Role
	}
	if patch.Plan != nil {
		fields[directory.FieldPlan] = *patch.Plan
	}
	if patch.Unlock {
		fields[directory.FieldLockedUntil] = nil
	} else if patch.LockedUntil != nil {
		fields[directory.FieldLockedUntil] = patch.LockedUntil.UTC()
	}
	return r.col.Merge(ctx, id, fields, false)
}

// SoftDelete flags the user as deleted, retaining the record.
func (r *UserRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	return r.col.Merge(ctx, id, store.Document{
		directory.FieldDeleted:   true,
		"deletedAt":              now.UTC(),
		directory.FieldUpdatedAt: now.UTC(),
	}, false)
}

// HardDelete removes the record irreversibly. The id is never reused.
func (r *UserRepository) HardDelete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}

// CountAll returns the fast approximate total.
func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	return r.col.Count(ctx, nil)
}

// CountActiveSince counts users whose last login is at or after t.
func (r *UserRepository) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	return r.col.Count(ctx, []store.Predicate{store.Gte(directory.FieldLastLogin, t.UTC())})
}

// CountCreatedSince counts users created at or after t.
func (r *UserRepository) CountCreatedSince(ctx context.Context, t time.Time) (int64, error) {
	return r.col.Count(ctx, []store.Predicate{store.Gte(directory.FieldCreatedAt, t.UTC())})
}

// CountBanned counts non-deleted users whose lock reaches past now.
func (r *UserRepository) CountBanned(ctx context.Context, now time.Time) (int64, error) {
	return r.col.Count(ctx, []store.Predicate{
		store.Eq(directory.FieldDeleted, false),
		store.Gt(directory.FieldLockedUntil, now.UTC()),
	})
}

// ScanClassification walks the whole collection in id order, fetching only
// the fields needed to classify a user (never whole records), and calls
// visit for each. Batched so memory stays bounded on large directories.
func (r *UserRepository) ScanClassification(ctx context.Context, visit func(store.Document)) error {
	var cursor *store.Cursor
	for {
		q := store.Query{
			Sort:       store.Sort{Field: store.IDField},
			StartAfter: cursor,
			Limit:      classificationBatchSize,
			Projection: []string{
				directory.FieldDeleted,
				directory.FieldLockedUntil,
				directory.FieldPlan,
				directory.FieldRole,
			},
		}
		docs, err := r.col.Find(ctx, q)
		if err != nil {
			return fmt.Errorf("classification scan: %w", err)
		}
		for _, d := range docs {
			visit(d)
		}
		if len(docs) < classificationBatchSize {
			return nil
		}
		last := docs[len(docs)-1]
		cursor = &store.Cursor{Key: last.ID(), ID: last.ID()}
	}
}
