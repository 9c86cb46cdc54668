package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/scheduler"
	"github.com/hray3182/calendar/internal/service"
)

// Server exposes the persistence contract and the calendar views over HTTP.
type Server struct {
	store    service.Store
	svc      *service.Service
	notified *scheduler.NotifiedSet
	now      func() time.Time
	echo     *echo.Echo
}

func New(store service.Store, svc *service.Service, notified *scheduler.NotifiedSet) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		store:    store,
		svc:      svc,
		notified: notified,
		now:      time.Now,
		echo:     e,
	}
	e.HTTPErrorHandler = s.handleError
	s.registerRoutes()
	return s
}

// Echo returns the underlying router, for serving and for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")

	api.GET("/events", s.listEvents)
	api.POST("/events", s.createEvent)
	api.PUT("/events/:id", s.updateEvent)
	api.DELETE("/events/:id", s.deleteEvent)
	api.POST("/events-list", s.createEventList)
	api.PUT("/events-list", s.updateEventList)
	api.DELETE("/events-list", s.deleteEventList)
	api.PUT("/recurring-events/:repeatId", s.updateSeries)
	api.DELETE("/recurring-events/:repeatId", s.deleteSeries)

	api.POST("/overlaps", s.overlaps)
	api.GET("/notifications", s.notifications)
	api.GET("/expand", s.expand)
	api.GET("/search", s.search)
	api.GET("/view", s.view)
	api.GET("/series", s.seriesList)
	api.GET("/calendar.ics", s.exportICS)

	cal := api.Group("/calendar/events")
	cal.POST("", s.calendarCreate)
	cal.PUT("/:id", s.calendarEdit)
	cal.POST("/:id/move", s.calendarMove)
	cal.DELETE("/:id", s.calendarDelete)
	cal.GET("/:id/related", s.calendarRelated)
}

type errorResponse struct {
	Error     string         `json:"error"`
	Conflicts []models.Event `json:"conflicts,omitempty"`
}

// handleError maps domain errors to status codes: invalid input 400, missing
// event or series 404, overlap 409, anything else 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorResponse{Error: "internal server error"}

	var (
		overlapErr *service.OverlapError
		httpErr    *echo.HTTPError
	)
	switch {
	case errors.As(err, &overlapErr):
		status = http.StatusConflict
		body = errorResponse{Error: overlapErr.Error(), Conflicts: overlapErr.Conflicts}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body.Error = fmt.Sprint(httpErr.Message)
	case errors.Is(err, models.ErrInvalid):
		status = http.StatusBadRequest
		body.Error = err.Error()
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		body.Error = err.Error()
	default:
		log.Printf("Request %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Printf("Failed to write error response: %v", err)
	}
}

// reload refreshes the service after a direct store write.
func (s *Server) reload(c echo.Context) {
	if err := s.svc.Reload(c.Request().Context()); err != nil {
		log.Printf("Failed to reload events: %v", err)
	}
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &models.ValidationError{Field: name, Message: fmt.Sprintf("invalid boolean %q", raw)}
	}
	return v, nil
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Field: name, Message: fmt.Sprintf("invalid integer %q", raw)}
	}
	return v, nil
}

func options(c echo.Context) (service.Options, error) {
	scope, err := service.ParseScope(c.QueryParam("scope"))
	if err != nil {
		return service.Options{}, err
	}
	force, err := queryBool(c, "force")
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{Scope: scope, Force: force}, nil
}

func bindEvent(c echo.Context) (models.Event, error) {
	var e models.Event
	if err := c.Bind(&e); err != nil {
		return models.Event{}, err
	}
	e.Normalize()
	return e, nil
}
