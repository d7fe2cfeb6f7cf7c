package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/madrasa/core/school"
)

const ctxSchoolKey = "school"

var errSchoolNotFoundInCtx = errors.New("school not found in echo.Context")

// schoolMiddleware loads the school named by the :school slug into the context.
func schoolMiddleware(svc *school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sch, err := svc.GetBySlug(ctx.Request().Context(), ctx.Param("school"))
			if err != nil {
				return errors.Wrap(err, "getting context school")
			}
			ctx.Set(ctxSchoolKey, sch)
			return next(ctx)
		}
	}
}

func getContextSchool(ctx echo.Context) (school.School, error) {
	sch, ok := ctx.Get(ctxSchoolKey).(school.School)
	if !ok {
		return school.School{}, errSchoolNotFoundInCtx
	}
	return sch, nil
}

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "madrasa",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Number of HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "madrasa",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// middleware records every request under its route template, not its raw path.
func (m *metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err) // commit the response so the status is known
			}

			req := ctx.Request()
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			code := strconv.Itoa(ctx.Response().Status)
			m.requests.WithLabelValues(req.Method, route, code).Inc()
			m.duration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
