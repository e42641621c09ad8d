package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/forms"
	"github.com/goliatone/go-formfields/pkg/registry"
	"github.com/goliatone/go-formfields/pkg/render"
)

func (s *Server) form(c echo.Context) *forms.Form {
	st := s.state.Load()
	return forms.New(st.registry, c.Param("object"), c.Param("screen"),
		forms.WithRenderers(st.renderers),
		forms.WithControlRenderer(st.controls),
		forms.WithLogger(s.logger),
	)
}

// target reads the edited item from the query string, or from the hidden
// fields of a posted form.
func target(c echo.Context) (itemID, subtype string) {
	itemID = c.QueryParam("item")
	if itemID == "" {
		itemID = c.FormValue(render.ItemFieldName)
	}
	subtype = c.QueryParam("subtype")
	if subtype == "" {
		subtype = c.FormValue(render.SubtypeFieldName)
	}
	return strings.TrimSpace(itemID), strings.TrimSpace(subtype)
}

func (s *Server) renderForm(c echo.Context) error {
	itemID, subtype := target(c)
	req := forms.Request{
		ItemID:    itemID,
		Subtype:   subtype,
		Principal: s.principal(c),
		Renderer:  c.QueryParam("renderer"),
		Options:   s.renderOptions(c),
	}
	return s.writeForm(c, http.StatusOK, req)
}

func (s *Server) saveForm(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body").SetInternal(err)
	}
	itemID, subtype := target(c)
	values := url.Values{}
	for key, value := range params {
		if key == render.ItemFieldName || key == render.SubtypeFieldName {
			continue
		}
		values[key] = value
	}

	form := s.form(c)
	result, err := form.Save(c.Request().Context(), forms.SaveRequest{
		ItemID:    itemID,
		Subtype:   subtype,
		Principal: s.principal(c),
		Values:    values,
		Subset:    s.renderOptions(c).Subset,
	})
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		status := http.StatusOK
		if !result.Valid() {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, result)
	}

	if !result.Valid() {
		options := s.renderOptions(c)
		options.Errors = []string{"Some fields could not be saved."}
		return s.writeForm(c, http.StatusUnprocessableEntity, forms.Request{
			ItemID:    itemID,
			Subtype:   subtype,
			Principal: s.principal(c),
			Options:   options,
			Errors:    result.Errors,
			Submitted: values,
		})
	}

	redirect := *c.Request().URL
	query := redirect.Query()
	query.Set("updated", "1")
	if itemID != "" {
		query.Set("item", itemID)
	}
	if subtype != "" {
		query.Set("subtype", subtype)
	}
	redirect.RawQuery = query.Encode()
	return c.Redirect(http.StatusSeeOther, redirect.RequestURI())
}

func (s *Server) writeForm(c echo.Context, status int, req forms.Request) error {
	form := s.form(c)
	renderer, err := form.Renderer(req.Renderer)
	if err != nil {
		return err
	}
	req.Renderer = renderer.Name()
	out, err := form.Render(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.Blob(status, renderer.ContentType(), out)
}

func (s *Server) renderOptions(c echo.Context) render.RenderOptions {
	action := *c.Request().URL
	query := action.Query()
	query.Del("updated")
	action.RawQuery = query.Encode()
	return render.RenderOptions{
		Action: action.RequestURI(),
		Theme:  s.theme,
		Subset: render.Subset{
			Sections: splitParam(c.QueryParam("sections")),
			Fields:   splitParam(c.QueryParam("fields")),
		},
	}
}

func (s *Server) queryChoices(c echo.Context) error {
	name := c.Param("name")
	handler := choices.NewHandler(s.state.Load().choices, choices.NewConfig(), func(*http.Request) string {
		return name
	})
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}

type entityView struct {
	Kind       fields.Kind `json:"kind"`
	ID         string      `json:"id"`
	ObjectType string      `json:"object_type"`
	Subtype    string      `json:"subtype,omitempty"`
	Parent     string      `json:"parent,omitempty"`
	Priority   int         `json:"priority"`
	Capability string      `json:"capability,omitempty"`
}

func (s *Server) listRegistry(c echo.Context) error {
	q := registry.Query{
		ObjectType:  c.Param("object"),
		Subtype:     c.QueryParam("subtype"),
		AllSubtypes: c.QueryParam("all") != "",
	}
	if raw := c.QueryParam("kind"); raw != "" {
		kind, err := fields.ParseKind(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.Kind = kind
	}

	entities := s.Registry().Find(q)
	out := make([]entityView, 0, len(entities))
	for _, entity := range entities {
		view := entityView{
			Kind:       entity.Kind(),
			ID:         entity.ID(),
			ObjectType: entity.Scope().ObjectType,
			Subtype:    entity.Scope().Subtype,
			Priority:   entity.Priority(),
		}
		if parented, ok := entity.(fields.Parented); ok {
			view.Parent = parented.ParentID()
		}
		if gated, ok := entity.(fields.Gated); ok {
			view.Capability = gated.Capability()
		}
		out = append(out, view)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": out})
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = http.StatusText(status)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	case errors.Is(err, forms.ErrScreenNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, render.ErrRendererNotFound), errors.Is(err, datastore.ErrItemRequired):
		status, message = http.StatusBadRequest, err.Error()
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	if wantsJSON(c) {
		_ = c.JSON(status, map[string]string{"error": message})
		return
	}
	_ = c.String(status, message)
}

func wantsJSON(c echo.Context) bool {
	if c.QueryParam("renderer") == "json" {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
