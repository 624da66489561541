package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quizlearn/data-gateway/internal/api/metrics"
	"github.com/quizlearn/data-gateway/internal/core/domain"
	"github.com/quizlearn/data-gateway/internal/core/ports"
)

// GatewayHandler is the single entry point of the data gateway. It parses
// the request envelope, routes the action to the generic store executor or
// the auth service, and wraps the outcome in the {data}/{error} envelope.
type GatewayHandler struct {
	store ports.Store
	auth  ports.AuthService
}

func NewGatewayHandler(store ports.Store, auth ports.AuthService) *GatewayHandler {
	return &GatewayHandler{store: store, auth: auth}
}

// Dispatch handles POST /api/gateway.
//
// @Summary      Execute a data or auth action
// @Description  Multiplexes generic document operations and session auth onto a single endpoint.
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Param        body  body      gatewayRequest  true  "Request envelope"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/gateway [post]
func (h *GatewayHandler) Dispatch(c echo.Context) error {
	var req gatewayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.execute(c, &req)
	metrics.ActionDuration.WithLabelValues(req.Action).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ActionsTotal.WithLabelValues(req.Action, "error").Inc()
		recordAuthFailure(err)
		return err
	}

	metrics.ActionsTotal.WithLabelValues(req.Action, "ok").Inc()
	return c.JSON(http.StatusOK, dataResponse{Data: result})
}

func (h *GatewayHandler) execute(c echo.Context, req *gatewayRequest) (any, error) {
	ctx := c.Request().Context()

	switch req.Action {
	case "find":
		var opts *ports.FindOptions
		if req.Options != nil {
			opts = &ports.FindOptions{Sort: req.Options.Sort, Limit: req.Options.Limit}
		}
		return h.store.Find(ctx, req.Collection, req.Query, opts)

	case "findOne":
		return h.store.FindOne(ctx, req.Collection, req.Query)

	case "insertOne":
		doc, err := decodeData[map[string]any](req.Data)
		if err != nil {
			return nil, err
		}
		id, err := h.store.InsertOne(ctx, req.Collection, doc)
		if err != nil {
			return nil, err
		}
		return map[string]any{"insertedId": id}, nil

	case "insertMany":
		docs, err := decodeData[[]any](req.Data)
		if err != nil {
			return nil, err
		}
		ids, err := h.store.InsertMany(ctx, req.Collection, docs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"insertedIds": ids}, nil

	case "updateOne":
		return h.store.UpdateOne(ctx, req.Collection, req.Query, req.Update)

	case "updateMany":
		return h.store.UpdateMany(ctx, req.Collection, req.Query, req.Update)

	case "deleteOne":
		n, err := h.store.DeleteOne(ctx, req.Collection, req.Query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deletedCount": n}, nil

	case "deleteMany":
		n, err := h.store.DeleteMany(ctx, req.Collection, req.Query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deletedCount": n}, nil

	case "aggregate":
		pipeline, err := decodeData[[]any](req.Data)
		if err != nil {
			return nil, err
		}
		return h.store.Aggregate(ctx, req.Collection, pipeline)

	case "count":
		return h.store.Count(ctx, req.Collection, req.Query)

	// Auth actions ignore the collection field and always target users.
	case "register":
		data, err := decodeAuthData[registerData](c, req.Data)
		if err != nil {
			return nil, err
		}
		user, err := h.auth.Register(ctx, data.Email, data.Password, data.Name)
		if err != nil {
			return nil, err
		}
		return userEnvelope{User: user}, nil

	case "login":
		data, err := decodeAuthData[loginData](c, req.Data)
		if err != nil {
			return nil, err
		}
		token, user, err := h.auth.Login(ctx, data.Email, data.Password)
		if err != nil {
			return nil, err
		}
		return userEnvelope{User: user, Token: token}, nil

	case "verifyToken":
		data, err := decodeAuthData[verifyTokenData](c, req.Data)
		if err != nil {
			return nil, err
		}
		user, err := h.auth.VerifyToken(ctx, data.Token)
		if err != nil {
			return nil, err
		}
		return userEnvelope{User: user}, nil

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAction, req.Action)
	}
}

// decodeData unmarshals the envelope's data field for a generic action.
func decodeData[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, echo.NewHTTPError(http.StatusBadRequest, "data is required")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, echo.NewHTTPError(http.StatusBadRequest, "invalid data payload")
	}
	return out, nil
}

// decodeAuthData unmarshals and validates an auth payload.
func decodeAuthData[T any](c echo.Context, raw json.RawMessage) (T, error) {
	out, err := decodeData[T](raw)
	if err != nil {
		return out, err
	}
	if err := c.Validate(&out); err != nil {
		return out, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return out, nil
}

func recordAuthFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
	case errors.Is(err, domain.ErrInvalidToken):
		metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.AuthFailuresTotal.WithLabelValues("token_expired").Inc()
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.AuthFailuresTotal.WithLabelValues("user_not_found").Inc()
	case errors.Is(err, domain.ErrUserExists):
		metrics.AuthFailuresTotal.WithLabelValues("duplicate_email").Inc()
	case errors.Is(err, domain.ErrTooManyAttempts):
		metrics.LoginsThrottledTotal.Inc()
	}
}
