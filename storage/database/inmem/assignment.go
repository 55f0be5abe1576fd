package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/masomo-dashboard/core/coursework"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ coursework.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) coursework.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a coursework.Assignment) (coursework.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (coursework.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return coursework.Assignment{}, coursework.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter coursework.QueryFilter) ([]coursework.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	res := make([]coursework.Assignment, 0)
	for _, a := range repo.db.table {
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		if filter.Subject != "" && !strings.EqualFold(a.Subject, filter.Subject) {
			continue
		}
		if filter.Grade != "" && a.Grade != filter.Grade {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		res = append(res, *a)
	}

	sort.Slice(res, func(i, j int) bool {
		less := lessAssignments(res[i], res[j], filter.Ordering.Field)
		if filter.Ordering.Ascending {
			return less
		}
		return lessAssignments(res[j], res[i], filter.Ordering.Field)
	})
	return res, nil
}

func lessAssignments(a, b coursework.Assignment, field string) bool {
	switch field {
	case "title":
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case "due_date":
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return true
		case a.DueDate != nil && b.DueDate == nil:
			return false
		case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
	}
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.Before(b.PublishedAt)
	}
	return a.ID < b.ID
}
