package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/auth"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/handlers"
)

// Authenticator checks Basic credentials; *auth.Authenticator satisfies it.
type Authenticator interface {
	Authenticate(username string, password string) (commonModels.Identity, bool)
}

var (
	authenticator Authenticator
	authBypass    bool
	bypassUser    string
)

// InitAuth sets the credential check used by every wrapped route. With bypass
// set, every request runs as adminUser without credentials.
func InitAuth(a Authenticator, bypass bool, adminUser string) {
	authenticator = a
	authBypass = bypass
	bypassUser = adminUser
}

func injectTrace(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Injecting trace middleware")
	req := re.req
	if req == nil {
		//this is a bad request
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.writer.Header().Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("trace middleware injected")
	return re
}

func authenticate(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Authenticating request")

	identity, ok := checkBasicAuth(re.req, re)
	if !ok {
		re.writer.Header().Set("WWW-Authenticate", `Basic realm="delphi", charset="UTF-8"`)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusUnauthorized,
			errorMessage: "Unauthorized",
		}
		return re
	}
	re.logger = re.logger.With("user", identity.Username)
	re.req = re.req.WithContext(auth.WithIdentity(re.req.Context(), identity))
	re.logger.Debug("Authorized")
	return re
}

func checkBasicAuth(r *http.Request, re requestResponseStruct) (commonModels.Identity, bool) {
	if authBypass {
		re.logger.Warn("--------------------------------------- auth bypass----------------------------------------------")
		return commonModels.Identity{Username: bypassUser, Name: bypassUser, IsAdmin: true}, true
	}
	if authenticator == nil {
		re.logger.Error("No credentials loaded")
		return commonModels.Identity{}, false
	}
	username, password, ok := r.BasicAuth()
	if !ok {
		re.logger.Warn("Missing basic authorization header")
		return commonModels.Identity{}, false
	}
	identity, ok := authenticator.Authenticate(username, password)
	if !ok {
		re.logger.Warn("Invalid credentials", "user", username)
	}
	return identity, ok
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Rate limiter middleware")
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Warn("Too many requests", "ip", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
		return re
	}
	re.logger.Debug("Rate limiter middleware authorized")
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, "", re.badRequest.errorMessage)
}
