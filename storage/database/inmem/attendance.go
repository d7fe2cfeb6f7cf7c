package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func copyReport(r attendance.Report) attendance.Report {
	r.Students = append(make([]string, 0, len(r.Students)), r.Students...)
	return r
}

func (repo *attendanceRepository) CreateReport(_ context.Context, r attendance.Report) (attendance.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.CreatedAt = r.CreatedAt.UTC()
	repo.db.reports[r.ID] = copyReport(r)
	return r, nil
}

func (repo *attendanceRepository) QueryReports(_ context.Context, schoolID string, filter attendance.QueryFilter) ([]attendance.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reports := make([]attendance.Report, 0)
	for _, r := range repo.db.reports {
		if r.SchoolID != schoolID {
			continue
		}
		if filter.Archived != nil && r.IsArchived != *filter.Archived {
			continue
		}
		reports = append(reports, copyReport(r))
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].Date.Equal(reports[j].Date.Time) {
			return reports[i].Date.After(reports[j].Date.Time)
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (repo *attendanceRepository) GetReport(_ context.Context, schoolID, id string) (attendance.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.reports[id]; ok && r.SchoolID == schoolID {
		return copyReport(r), nil
	}
	return attendance.Report{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) SetArchived(_ context.Context, schoolID, id string, archived bool) (attendance.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r, ok := repo.db.reports[id]
	if !ok || r.SchoolID != schoolID {
		return attendance.Report{}, attendance.ErrNotFound
	}
	r.IsArchived = archived
	repo.db.reports[id] = r
	return copyReport(r), nil
}
