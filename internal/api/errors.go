package api

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/middleware"
)

// respondError writes err in the {"error": ...} shape with its HTTP status
func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// bindJSON decodes the body into req. An empty body leaves req zero valued so
// the request's own validation reports the missing fields.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondError(c, bindingError(err))
	return false
}

// bindingError turns decoder and validator failures into a client message
func bindingError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierrors.BadRequest("Invalid JSON body.")
	}

	fe := verrs[0]
	field := jsonFieldName(fe)
	if fe.Tag() == "max" {
		return apierrors.BadRequest(fmt.Sprintf("%s exceeds %s characters.", field, fe.Param()))
	}
	return apierrors.BadRequest(fmt.Sprintf("%s is invalid.", field))
}

// jsonFieldName maps a Go field name such as ReporterEmail or ReferenceURL to
// reporter_email or reference_url
func jsonFieldName(fe validator.FieldError) string {
	return snakeCase(fe.Field())
}

func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
