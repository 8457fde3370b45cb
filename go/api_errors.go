package shroomserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	authapp "github.com/shroombros/shroom-api/internal/domains/auth/application"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	logisticsapp "github.com/shroombros/shroom-api/internal/domains/logistics/application"
	logisticsports "github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	monitoringapp "github.com/shroombros/shroom-api/internal/domains/monitoring/application"
	monitoringports "github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
	salesapp "github.com/shroombros/shroom-api/internal/domains/sales/application"
	salesports "github.com/shroombros/shroom-api/internal/domains/sales/ports"
	apierrors "github.com/shroombros/shroom-api/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("",
	mapUnauthorized,
	mapNotFound,
	mapInvalidInput,
	mapConflict,
	mapTimeout,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError turns an application error into a problem response.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func mapUnauthorized(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, authapp.ErrUnauthorized) || errors.Is(err, authports.ErrInvalidToken) {
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFound(err error) (apierrors.ProblemDetail, bool) {
	for _, target := range []error{
		logisticsports.ErrNotFound,
		logisticsports.ErrStopNotFound,
		logisticsports.ErrDriverNotFound,
		logisticsports.ErrOrderNotFound,
		salesports.ErrNotFound,
		salesports.ErrCustomerNotFound,
		monitoringports.ErrProductNotFound,
		monitoringports.ErrLotNotFound,
		authports.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return apierrors.ErrNotFound.WithDetail(err.Error()), true
		}
	}
	return apierrors.ProblemDetail{}, false
}

func mapInvalidInput(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, logisticsapp.ErrInvalidInput) ||
		errors.Is(err, salesapp.ErrInvalidInput) ||
		errors.Is(err, monitoringapp.ErrInvalidInput) ||
		errors.Is(err, authapp.ErrInvalidInput) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapConflict(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, logisticsapp.ErrConflict) ||
		errors.Is(err, salesapp.ErrConflict) ||
		errors.Is(err, monitoringapp.ErrConflict) ||
		errors.Is(err, authapp.ErrConflict) {
		return apierrors.NewConflictProblem(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapTimeout(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.ErrTimeout.WithDetail("request deadline exceeded"), true
	}
	return apierrors.ProblemDetail{}, false
}
