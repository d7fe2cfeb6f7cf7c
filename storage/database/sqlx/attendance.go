package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/attendance"
	"github.com/trezcool/madrasa/core/schedule"
)

const reportColumns = "id, school_id, report_date, day, teacher_name, class_name, absent_count, students, is_archived, created_at"

type reportRow struct {
	ID          string    `db:"id"`
	SchoolID    string    `db:"school_id"`
	ReportDate  core.Date `db:"report_date"`
	Day         string    `db:"day"`
	TeacherName string    `db:"teacher_name"`
	ClassName   string    `db:"class_name"`
	AbsentCount int       `db:"absent_count"`
	Students    string    `db:"students"` // JSON array
	IsArchived  bool      `db:"is_archived"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r reportRow) report() (attendance.Report, error) {
	students := make([]string, 0)
	if r.Students != "" {
		if err := json.Unmarshal([]byte(r.Students), &students); err != nil {
			return attendance.Report{}, core.NewStorageError(err, "decoding report students")
		}
	}
	return attendance.Report{
		ID:          r.ID,
		SchoolID:    r.SchoolID,
		Date:        r.ReportDate,
		Day:         schedule.Day(r.Day),
		TeacherName: r.TeacherName,
		ClassName:   r.ClassName,
		AbsentCount: r.AbsentCount,
		Students:    students,
		IsArchived:  r.IsArchived,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateReport(ctx context.Context, r attendance.Report) (attendance.Report, error) {
	students, err := json.Marshal(r.Students)
	if err != nil {
		return attendance.Report{}, core.NewStorageError(err, "encoding report students")
	}
	r.CreatedAt = r.CreatedAt.UTC()
	q := repo.db.Rebind(`INSERT INTO attendance_reports (` + reportColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = repo.db.ExecContext(ctx, q,
		r.ID, r.SchoolID, r.Date, string(r.Day), r.TeacherName, r.ClassName, r.AbsentCount, string(students), r.IsArchived, r.CreatedAt)
	if err != nil {
		return attendance.Report{}, core.NewStorageError(err, "inserting attendance report")
	}
	return r, nil
}

func (repo attendanceRepository) QueryReports(ctx context.Context, schoolID string, filter attendance.QueryFilter) ([]attendance.Report, error) {
	q := `SELECT ` + reportColumns + ` FROM attendance_reports WHERE school_id = ?`
	args := []interface{}{schoolID}
	if filter.Archived != nil {
		q += ` AND is_archived = ?`
		args = append(args, *filter.Archived)
	}
	q += ` ORDER BY report_date DESC, created_at DESC`

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, core.NewStorageError(err, "selecting attendance reports")
	}
	reports := make([]attendance.Report, 0, len(rows))
	for _, r := range rows {
		report, err := r.report()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (repo attendanceRepository) GetReport(ctx context.Context, schoolID, id string) (attendance.Report, error) {
	var r reportRow
	q := repo.db.Rebind(`SELECT ` + reportColumns + ` FROM attendance_reports WHERE school_id = ? AND id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, schoolID, id); err != nil {
		return attendance.Report{}, trapNoRowsErr(err, attendance.ErrNotFound, "selecting attendance report")
	}
	return r.report()
}

func (repo attendanceRepository) SetArchived(ctx context.Context, schoolID, id string, archived bool) (attendance.Report, error) {
	q := repo.db.Rebind(`UPDATE attendance_reports SET is_archived = ? WHERE school_id = ? AND id = ?`)
	res, err := repo.db.ExecContext(ctx, q, archived, schoolID, id)
	if err != nil {
		return attendance.Report{}, core.NewStorageError(err, "updating attendance report")
	}
	if err = checkAffected(res, attendance.ErrNotFound, "updating attendance report"); err != nil {
		return attendance.Report{}, err
	}
	return repo.GetReport(ctx, schoolID, id)
}
