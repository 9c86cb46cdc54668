package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hray3182/calendar/internal/models"
)

type eventsBody struct {
	Events []models.Event `json:"events"`
}

type eventIDsBody struct {
	EventIDs []string `json:"eventIds"`
}

func (s *Server) listEvents(c echo.Context) error {
	events, err := s.store.List(c.Request().Context())
	if err != nil {
		return err
	}
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(http.StatusOK, eventsBody{Events: events})
}

func (s *Server) createEvent(c echo.Context) error {
	e, err := bindEvent(c)
	if err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}

	created, err := s.store.Create(c.Request().Context(), e)
	if err != nil {
		return err
	}
	s.reload(c)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateEvent(c echo.Context) error {
	e, err := bindEvent(c)
	if err != nil {
		return err
	}
	e.ID = c.Param("id")
	if err := e.Validate(); err != nil {
		return err
	}

	updated, err := s.store.Update(c.Request().Context(), e)
	if err != nil {
		return err
	}
	s.reload(c)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteEvent(c echo.Context) error {
	if err := s.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	s.reload(c)
	return c.NoContent(http.StatusNoContent)
}

// createEventList stores a batch; recurring members get one shared series id.
func (s *Server) createEventList(c echo.Context) error {
	events, err := bindEvents(c)
	if err != nil {
		return err
	}

	created, err := s.store.CreateBatch(c.Request().Context(), events)
	if err != nil {
		return err
	}
	s.reload(c)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateEventList(c echo.Context) error {
	events, err := bindEvents(c)
	if err != nil {
		return err
	}

	updated, err := s.store.UpdateBatch(c.Request().Context(), events)
	if err != nil {
		return err
	}
	s.reload(c)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteEventList(c echo.Context) error {
	var body eventIDsBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	if err := s.store.DeleteBatch(c.Request().Context(), body.EventIDs); err != nil {
		return err
	}
	s.reload(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) updateSeries(c echo.Context) error {
	var patch models.SeriesPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	updated, err := s.store.UpdateSeries(c.Request().Context(), c.Param("repeatId"), patch)
	if err != nil {
		return err
	}
	s.reload(c)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteSeries(c echo.Context) error {
	if err := s.store.DeleteSeries(c.Request().Context(), c.Param("repeatId")); err != nil {
		return err
	}
	s.reload(c)
	return c.NoContent(http.StatusNoContent)
}

func bindEvents(c echo.Context) ([]models.Event, error) {
	var body eventsBody
	if err := c.Bind(&body); err != nil {
		return nil, err
	}
	if len(body.Events) == 0 {
		return nil, &models.ValidationError{Field: "events", Message: "at least one event is required"}
	}
	for i := range body.Events {
		body.Events[i].Normalize()
		if err := body.Events[i].Validate(); err != nil {
			return nil, err
		}
	}
	return body.Events, nil
}
