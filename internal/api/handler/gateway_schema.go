package handler

import "encoding/json"

// errorResponse documents the error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// dataResponse is the success envelope: every action answers {"data": ...}.
type dataResponse struct {
	Data any `json:"data"`
}

// gatewayRequest is the request envelope accepted by the gateway endpoint.
// Data is decoded per action: a document for insertOne, an array for
// insertMany and aggregate, credential payloads for the auth actions.
type gatewayRequest struct {
	Action     string              `json:"action" validate:"required"`
	Collection string              `json:"collection"`
	Data       json.RawMessage     `json:"data,omitempty"`
	Query      map[string]any      `json:"query,omitempty"`
	Update     map[string]any      `json:"update,omitempty"`
	Options    *findOptionsRequest `json:"options,omitempty"`
}

type findOptionsRequest struct {
	Sort  map[string]any `json:"sort,omitempty"`
	Limit int64          `json:"limit,omitempty"`
}

// Auth action payloads, carried in the envelope's data field.

type registerData struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required"`
}

type loginData struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyTokenData struct {
	Token string `json:"token" validate:"required"`
}

// userEnvelope matches the {user} / {user, token} shapes the frontend's auth
// hook consumes.
type userEnvelope struct {
	User  any    `json:"user"`
	Token string `json:"token,omitempty"`
}
