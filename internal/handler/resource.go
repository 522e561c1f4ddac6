package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/member-crm/internal/service"
	"github.com/maxviazov/member-crm/pkg/response"
)

// ResourceHandler serves list and CRUD endpoints for one entity.
type ResourceHandler[T any] struct {
	path string
	svc  service.Resource[T]
	spec service.ListSpec
}

func NewResourceHandler[T any](path string, svc service.Resource[T], spec service.ListSpec) *ResourceHandler[T] {
	return &ResourceHandler[T]{path: path, svc: svc, spec: spec}
}

func (h *ResourceHandler[T]) Register(r *gin.RouterGroup) {
	g := r.Group(h.path)
	{
		g.GET("", h.list)
		g.POST("", h.create)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
	}
}

// mount registers the endpoints of an entity under its resource name, with underscores
// turned into hyphens (membership_types -> /membership-types).
func mount[T any](r *gin.RouterGroup, e service.Entity[T], svc service.Resource[T]) {
	NewResourceHandler("/"+strings.ReplaceAll(e.Name, "_", "-"), svc, e.List).Register(r)
}

func (h *ResourceHandler[T]) list(c *gin.Context) {
	req, err := h.listRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// listRequest reads q, sort, dir, toggle, page and page_size plus one query key per
// declared ref and flag. Malformed numbers are reported per parameter.
func (h *ResourceHandler[T]) listRequest(c *gin.Context) (service.ListRequest, error) {
	var fe []service.FieldError
	req := service.ListRequest{
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
		Dir:    c.Query("dir"),
		Toggle: c.Query("toggle"),
		Refs:   make(map[string]int64, len(h.spec.Refs)),
		Flags:  make(map[string]bool, len(h.spec.Flags)),
	}

	intParam := func(name string) int {
		raw := c.Query(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fe = append(fe, service.FieldError{Field: name, Message: "must be an integer"})
		}
		return n
	}
	req.Page = intParam("page")
	req.PageSize = intParam("page_size")

	for _, ref := range h.spec.Refs {
		raw := c.Query(ref)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fe = append(fe, service.FieldError{Field: ref, Message: "must be an integer"})
			continue
		}
		req.Refs[ref] = id
	}
	for _, flag := range h.spec.Flags {
		raw := c.Query(flag)
		if raw == "" {
			continue
		}
		on, err := strconv.ParseBool(raw)
		if err != nil {
			fe = append(fe, service.FieldError{Field: flag, Message: "must be true or false"})
			continue
		}
		req.Flags[flag] = on
	}

	if len(fe) > 0 {
		return service.ListRequest{}, service.NewInvalidInputError(fe...)
	}
	return req, nil
}

func (h *ResourceHandler[T]) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	v, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, v)
}

func (h *ResourceHandler[T]) create(c *gin.Context) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		response.WriteError(c, malformedBody())
		return
	}
	out, err := h.svc.Create(c.Request.Context(), v)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, out)
}

func (h *ResourceHandler[T]) update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		response.WriteError(c, malformedBody())
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, v)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, out)
}

func (h *ResourceHandler[T]) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var version int64
	if raw := c.Query("version"); raw != "" {
		version, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.WriteError(c, service.NewInvalidInputError(service.FieldError{Field: "version", Message: "must be an integer"}))
			return
		}
	}
	if err := h.svc.Delete(c.Request.Context(), id, version); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError(service.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

func malformedBody() error {
	return service.NewInvalidInputError(service.FieldError{Field: "body", Message: "must be a valid JSON object"})
}
