package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/app/dto"
	"jobboard/internal/domain"
	"jobboard/internal/domain/identity"
)

const callerKey = "jobboard.caller"

// Authenticate resolves the bearer token to a caller identity once per
// request. Handlers read the caller via CallerFrom and pass it explicitly
// into services; there is no ambient authentication state below this point.
func Authenticate(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, domain.NewAuthenticationError("missing bearer credential"))
			return
		}

		caller, err := verifier.CurrentUser(c.Request.Context(), token)
		if err != nil {
			var de *domain.DomainError
			if errors.As(err, &de) {
				abortWithError(c, de)
				return
			}
			abortWithError(c, domain.NewAuthenticationError("credential could not be verified"))
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the identity Authenticate stored for this request.
func CallerFrom(c *gin.Context) (identity.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return identity.Caller{}, false
	}
	caller, ok := v.(identity.Caller)
	return caller, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func abortWithError(c *gin.Context, de *domain.DomainError) {
	c.AbortWithStatusJSON(de.HTTPStatus, dto.ErrorResponse{
		Status:  de.HTTPStatus,
		Code:    string(de.Code),
		Message: de.Message,
		Path:    c.Request.URL.Path,
	})
}
