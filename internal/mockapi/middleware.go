package mockapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

const callerKey = "placeboard.caller"

// Credential failures, each answered with 401 and the text in
// credentialMessages.
var (
	errNoCredentials   = errors.New("no authorization header")
	errNotBearer       = errors.New("authorization scheme is not bearer")
	errBlankToken      = errors.New("bearer token is blank")
	errRejectedToken   = errors.New("access token rejected")
	errUnknownUser     = errors.New("token subject does not exist")
	credentialMessages = map[error]string{
		errNoCredentials: "Missing authorization header",
		errNotBearer:     "Invalid authorization header format",
		errBlankToken:    "Empty token",
		errRejectedToken: "Invalid or expired token",
		errUnknownUser:   "User not found",
	}
)

// Caller is the authenticated user a request runs as
type Caller struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	CompanyID *string
}

func callerFrom(c *gin.Context) (*Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*Caller)
	return caller, ok
}

// bearerToken pulls the token out of an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	switch {
	case header == "":
		return "", errNoCredentials
	case !found || scheme != "Bearer":
		return "", errNotBearer
	case token == "":
		return "", errBlankToken
	}
	return token, nil
}

// abortWithMessage logs err and ends the request with the {"message": ...}
// body the dashboard reads
func abortWithMessage(c *gin.Context, log zerolog.Logger, status int, err error, message string) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg(message)
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func rejectCredentials(c *gin.Context, log zerolog.Logger, err error) {
	message := "Unauthorized"
	for sentinel, m := range credentialMessages {
		if errors.Is(err, sentinel) {
			message = m
			break
		}
	}
	abortWithMessage(c, log, http.StatusUnauthorized, err, message)
}

// RequireCaller resolves the bearer access token to a stored user and
// records it as the request's Caller.
func RequireCaller(db *gorm.DB, tokens *tokenIssuer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			rejectCredentials(c, log, err)
			return
		}

		claims, err := tokens.Validate(token, tokenTypeAccess)
		if err != nil {
			rejectCredentials(c, log, errors.Join(errRejectedToken, err))
			return
		}

		// A token can outlive its user when the store is reseeded
		var user models.User
		if err := models.FindByID(db, claims.UserID, &user); err != nil {
			rejectCredentials(c, log, errors.Join(errUnknownUser, err))
			return
		}

		c.Set(callerKey, &Caller{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CompanyID: user.CompanyID,
		})
		c.Next()
	}
}

// RequireRole lets only callers holding one of roles through
func RequireRole(log zerolog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFrom(c)
		if !ok {
			abortWithMessage(c, log, http.StatusUnauthorized, errors.New("no caller on request"), "Unauthorized")
			return
		}
		if !slices.Contains(roles, caller.Role) {
			abortWithMessage(c, log, http.StatusForbidden,
				errors.New("role "+caller.Role+" not allowed"), "You do not have access to this resource")
			return
		}
		c.Next()
	}
}
