package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hray3182/calendar/internal/ical"
	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/rrule"
)

type datesBody struct {
	Dates []string `json:"dates"`
}

type idsBody struct {
	IDs []string `json:"ids"`
}

type moveBody struct {
	Date string `json:"date"`
}

type seriesBody struct {
	ID       string         `json:"id"`
	Explicit bool           `json:"explicit"`
	Members  []models.Event `json:"members"`
}

func eventsResponse(c echo.Context, status int, events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(status, eventsBody{Events: events})
}

func (s *Server) overlaps(c echo.Context) error {
	candidate, err := bindEvent(c)
	if err != nil {
		return err
	}
	conflicts, err := s.svc.Overlaps(candidate)
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusOK, conflicts)
}

func (s *Server) notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, idsBody{IDs: s.notified.IDs()})
}

// expand returns the occurrence dates of a recurrence definition. max caps
// the count; without it and without endDate the service default applies.
func (s *Server) expand(c echo.Context) error {
	interval, err := queryInt(c, "interval", 1)
	if err != nil {
		return err
	}
	maxCount, err := queryInt(c, "max", 0)
	if err != nil {
		return err
	}

	repeat := models.Repeat{
		Type:     models.RepeatType(c.QueryParam("type")),
		Interval: interval,
		EndDate:  c.QueryParam("endDate"),
	}
	if repeat.Type == "" || repeat.Type == models.RepeatNone {
		repeat = models.NoRepeat()
	}

	dates, err := s.svc.Expand(c.QueryParam("date"), repeat, rrule.Horizon{MaxCount: maxCount})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, datesBody{Dates: dates})
}

func (s *Server) search(c echo.Context) error {
	return eventsResponse(c, http.StatusOK, s.svc.Search(c.QueryParam("q")))
}

func (s *Server) view(c echo.Context) error {
	var (
		events []models.Event
		err    error
	)
	switch kind := c.QueryParam("kind"); kind {
	case "", "month":
		events, err = s.svc.Month(c.QueryParam("date"))
	case "week":
		events, err = s.svc.Week(c.QueryParam("date"))
	default:
		return &models.ValidationError{Field: "kind", Message: "kind must be week or month"}
	}
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusOK, events)
}

func (s *Server) seriesList(c echo.Context) error {
	groups := s.svc.Series()
	out := make([]seriesBody, len(groups))
	for i, g := range groups {
		out[i] = seriesBody{ID: g.ID, Explicit: g.Explicit, Members: g.Members}
	}
	return c.JSON(http.StatusOK, map[string][]seriesBody{"series": out})
}

func (s *Server) exportICS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ical.Export(s.svc.Events(), s.now())))
}

func (s *Server) calendarCreate(c echo.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}
	e, err := bindEvent(c)
	if err != nil {
		return err
	}

	created, err := s.svc.Create(c.Request().Context(), e, opts)
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusCreated, created)
}

func (s *Server) calendarEdit(c echo.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}
	e, err := bindEvent(c)
	if err != nil {
		return err
	}
	e.ID = c.Param("id")

	saved, err := s.svc.Edit(c.Request().Context(), e, opts)
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusOK, saved)
}

func (s *Server) calendarMove(c echo.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}
	var body moveBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	saved, err := s.svc.Move(c.Request().Context(), c.Param("id"), body.Date, opts)
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusOK, saved)
}

func (s *Server) calendarDelete(c echo.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}
	if err := s.svc.Delete(c.Request().Context(), c.Param("id"), opts); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) calendarRelated(c echo.Context) error {
	related, err := s.svc.Related(c.Param("id"))
	if err != nil {
		return err
	}
	return eventsResponse(c, http.StatusOK, related)
}
