package middleware

import (
	"github.com/gin-gonic/gin"

	"khaata/internal/core/apperror"
	appctx "khaata/internal/core/context"
	"khaata/internal/infrastructure/http/v1/dto"
	"khaata/pkg/logger"
)

// ErrorHandler renders the last error of the request as dto.ErrorResponse.
// Internal failures are logged with their cause and reach the client only as
// a code and the request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ctx := c.Request.Context()
		err := c.Errors.Last().Err

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err)
		}

		if appErr.Class == apperror.ClassInternal {
			logger.Error(ctx, "request failed",
				"code", appErr.Code,
				"error", err,
			)
			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Class:   string(appErr.Class),
				Details: map[string]any{"request_id": appctx.GetRequestID(ctx)},
			})
			return
		}

		if appErr.Err != nil {
			logger.Warn(ctx, "request rejected", "code", appErr.Code, "cause", appErr.Err)
		}
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Class:   string(appErr.Class),
			Details: appErr.Details,
		})
	}
}
