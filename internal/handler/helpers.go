package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"panaderia/internal/apierror"
	"panaderia/internal/middleware"
	"panaderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a float.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false after writing the error response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrGatewayFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Failures that carry timing are
// written as apierror.FalloResponse.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("request failed")
	}

	var fallo *service.FalloConsulta
	if errors.As(err, &fallo) {
		resp := apierror.FalloResponse{
			Success:         false,
			Detail:          detalleFallo(fallo, status),
			ExecutionTimeMs: fallo.ExecutionTimeMs,
		}
		if fallo.SessionID != 0 {
			sid := fallo.SessionID
			resp.SessionID = &sid
		}
		c.JSON(status, resp)
		return
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

func detalleFallo(f *service.FalloConsulta, status int) string {
	if status == http.StatusBadGateway && f.Err != nil {
		return f.Mensaje + ": " + f.Err.Error()
	}
	return f.Mensaje
}

// usuarioID returns the authenticated user id; routes using it sit behind JWTAuth.
func usuarioID(c *gin.Context) uint {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return uint(v), true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" debe ser un entero"))
		return 0, false
	}
	return v, true
}
