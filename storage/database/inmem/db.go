package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
)

type (
	DB struct {
		assignment *assignmentTable
		school     *schoolTable
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*coursework.Assignment
	}

	schoolTable struct {
		sync.RWMutex
		scores     []dashboard.Score
		objectives []dashboard.Objective
	}
)

func Open() *DB {
	return &DB{
		assignment: &assignmentTable{table: make(map[string]*coursework.Assignment)},
		school:     &schoolTable{},
	}
}

// Seed appends scores & objectives to the school tables.
func (db *DB) Seed(scores []dashboard.Score, objectives []dashboard.Objective) {
	db.school.Lock()
	defer db.school.Unlock()
	db.school.scores = append(db.school.scores, scores...)
	db.school.objectives = append(db.school.objectives, objectives...)
}
