package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/core/attendance"
	"github.com/trezcool/madrasa/core/completion"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/core/week"
	appfs "github.com/trezcool/madrasa/fs"
	emailsvc "github.com/trezcool/madrasa/services/email"
	inmemdb "github.com/trezcool/madrasa/storage/database/inmem"
	"github.com/trezcool/madrasa/tests"
)

var (
	schoolRepo     school.Repository
	scheduleRepo   schedule.Repository
	weekRepo       week.Repository
	planRepo       plan.Repository
	attendanceRepo attendance.Repository
	mailSvc        *emailsvc.ConsoleServiceMock
	registry       *prometheus.Registry
)

func setup(t *testing.T) *Server {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db := inmemdb.Open()
	schoolRepo = inmemdb.NewSchoolRepository(db)
	scheduleRepo = inmemdb.NewScheduleRepository(db)
	weekRepo = inmemdb.NewWeekRepository(db)
	planRepo = inmemdb.NewPlanRepository(db)
	attendanceRepo = inmemdb.NewAttendanceRepository(db)

	// set up services
	mailSvc = emailsvc.NewConsoleServiceMock(conf)
	core.ParseEmailTemplates(appfs.EmailTemplates(), conf, logger)

	schoolSvc := school.NewService(schoolRepo)
	scheduleSvc := schedule.NewService(scheduleRepo)
	weekSvc := week.NewService(weekRepo)
	planSvc := plan.NewService(planRepo, weekSvc)
	attendanceSvc := attendance.NewService(attendanceRepo)
	resolver := completion.NewResolver(weekSvc, schoolSvc, scheduleSvc, planSvc)
	validate, translator := testutil.NewValidator()
	registry = prometheus.NewRegistry()

	// set up server
	return NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			Registerer:    registry,
			SchoolSvc:     schoolSvc,
			ScheduleSvc:   scheduleSvc,
			WeekSvc:       weekSvc,
			PlanSvc:       planSvc,
			Resolver:      resolver,
			Reminders:     completion.NewReminders(resolver, mailSvc),
			ArchiveMgr:    archive.NewManager(inmemdb.NewArchiveRepository(db), weekSvc, planSvc, attendanceSvc),
			AttendanceSvc: attendanceSvc,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func serve(app *Server, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func methodOr(method, fallback string) string {
	if method == "" {
		return fallback
	}
	return method
}
