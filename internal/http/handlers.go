package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/export"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/metrics"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/service"
)

const sessionKey = "session"

func Register(app *fiber.App, svcs *service.Services, m *metrics.Metrics, gatherer prometheus.Gatherer) {
	app.Use(observe(m))

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/login", func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, err)
		}
		sess, err := svcs.Sessions.Login(c.UserContext(), body.Email, body.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sess)
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		if token := bearer(c); token != "" {
			svcs.Sessions.Logout(token)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	auth := requireSession(svcs.Sessions)
	app.Get("/records", auth, func(c *fiber.Ctx) error {
		items, err := svcs.Growth.Records(c.UserContext(), session(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	app.Post("/records", auth, func(c *fiber.Ctx) error {
		var in service.EntryInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, err)
		}
		res, err := svcs.Growth.SubmitEntry(c.UserContext(), session(c), in)
		if err != nil {
			if res.Record.ID != 0 {
				// stored, but the refreshed list could not be read
				return failWith(c, err, fiber.Map{"record": res.Record})
			}
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})
	app.Put("/records", auth, func(c *fiber.Ctx) error {
		var rows []service.EditedRow
		if err := c.BodyParser(&rows); err != nil {
			return badRequest(c, err)
		}
		report, records, err := svcs.Growth.SaveEdits(c.UserContext(), session(c), service.EditedRecords(rows))
		if err != nil {
			return failWith(c, err, fiber.Map{"report": report})
		}
		return c.JSON(fiber.Map{"report": report, "records": records})
	})
	app.Delete("/records/:id", auth, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
		}
		records, err := svcs.Growth.DeleteRecord(c.UserContext(), session(c), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(records)
	})
	app.Get("/dashboard", auth, func(c *fiber.Ctx) error {
		view, err := svcs.Growth.Dashboard(c.UserContext(), session(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	})
	app.Get("/compare", auth, func(c *fiber.Ctx) error {
		rows, err := svcs.Growth.Compare(c.UserContext(), session(c), c.Query("standard"), c.Query("granularity"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})
	app.Get("/export.csv", auth, func(c *fiber.Ctx) error {
		data, err := svcs.Growth.ExportCSV(c.UserContext(), session(c))
		if err != nil {
			return fail(c, err)
		}
		return download(c, export.CSVFileName, export.CSVContentType, data)
	})
	app.Get("/export.xlsx", auth, func(c *fiber.Ctx) error {
		data, err := svcs.Growth.ExportXLSX(c.UserContext(), session(c))
		if err != nil {
			return fail(c, err)
		}
		return download(c, export.XLSXFileName, export.XLSXContentType, data)
	})
	app.Post("/export/upload", auth, func(c *fiber.Ctx) error {
		url, err := svcs.Growth.UploadExport(c.UserContext(), session(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})
	app.Post("/reports/weekly", auth, func(c *fiber.Ctx) error {
		var end time.Time
		if v := c.Query("end"); v != "" {
			d, err := domain.ParseDay(v)
			if err != nil {
				return fail(c, &domain.ValidationError{Field: "end", Value: v})
			}
			end = d
		}
		report, err := svcs.Growth.WeeklyReport(c.UserContext(), session(c), end)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(report)
	})
}

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func requireSession(sessions *service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessions.Lookup(bearer(c))
		if err != nil {
			return fail(c, err)
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

func session(c *fiber.Ctx) *domain.Session {
	sess, _ := c.Locals(sessionKey).(*domain.Session)
	return sess
}

func observe(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		code := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		m.ObserveRequest(c.Method(), c.Route().Path, code, time.Since(start))
		return err
	}
}

func download(c *fiber.Ctx, name, contentType string, data []byte) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrAuthentication):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotConfigured):
		return fiber.StatusNotImplemented
	case errors.Is(err, domain.ErrStoreOperation), errors.Is(err, domain.ErrGeneration):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return failWith(c, err, nil)
}

func failWith(c *fiber.Ctx, err error, body fiber.Map) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	if body == nil {
		body = fiber.Map{}
	}
	body["error"] = err.Error()
	return c.Status(code).JSON(body)
}
