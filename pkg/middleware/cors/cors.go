package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Policy lists what browser clients of the portal may do cross-origin.
type Policy struct {
	// Origins holds exact origins. Empty, or an entry of "*", allows any origin.
	Origins       []string
	Methods       []string
	Headers       []string
	ExposeHeaders []string
	MaxAge        time.Duration
}

// DefaultPolicy covers the portal routes. Report downloads need Content-Disposition
// exposed so the dashboard can name the saved file.
func DefaultPolicy(origins []string, maxAge time.Duration) Policy {
	return Policy{
		Origins:       origins,
		Methods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		Headers:       []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        maxAge,
	}
}

// New returns the CORS middleware for the given policy. Requests without an
// Origin header pass through untouched. A preflight from an origin outside the
// policy is answered with 403.
func New(policy Policy) gin.HandlerFunc {
	allowed := originMatcher(policy.Origins)
	methods := strings.Join(append(append([]string{}, policy.Methods...), http.MethodOptions), ", ")
	headers := strings.Join(policy.Headers, ", ")
	expose := strings.Join(policy.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(policy.MaxAge / time.Second))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
		if !allowed(origin) {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}

		if preflight {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if policy.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originMatcher(origins []string) func(string) bool {
	set := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			return func(string) bool { return true }
		}
		if origin != "" {
			set[strings.ToLower(origin)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(string) bool { return true }
	}
	return func(origin string) bool {
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}
