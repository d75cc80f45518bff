package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodgram-project/backend/internal/service"
)

// respondError translates service errors into the HTTP status table. Field
// validation failures carry their field-scoped messages; relation conflicts
// and the empty cart use the `errors` body shape.
func respondError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrRelationMissing),
		errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		logrus.WithError(err).Error("unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pageParams reads page/limit query parameters with the default page size.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))
	if limit < 1 {
		limit = service.DefaultPageSize
	}
	return page, limit
}

// pageLinks builds the next/previous URLs of the pagination envelope from the
// request URL.
func pageLinks(c *gin.Context, page, limit int, count int64) (next, previous *string) {
	if int64(page*limit) < count {
		next = pageURL(c.Request.URL, page+1)
	}
	if page > 1 {
		previous = pageURL(c.Request.URL, page-1)
	}
	return next, previous
}

func pageURL(u *url.URL, page int) *string {
	copied := *u
	q := copied.Query()
	q.Set("page", strconv.Itoa(page))
	copied.RawQuery = q.Encode()
	s := copied.String()
	return &s
}

// bindError reports a malformed request body as a field-less 400.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
}
