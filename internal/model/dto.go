package model

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Incoming relay description. Method is optional and defaults to GET.
type DTOProxyRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method" validate:"omitempty,httpmethod"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Params  map[string]any    `json:"params,omitempty"`
}

// Relay outcome returned to the caller. Status codes from the target are
// passed through verbatim, including 4xx and 5xx.
type DTOProxyResponse struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Body       json.RawMessage   `json:"body"`

	// BodyEncoding is "base64" when Body is a base64 string of a binary payload.
	BodyEncoding string `json:"bodyEncoding,omitempty"`
	Time         int64  `json:"time"`
}

type DTOCreateCollectionRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type DTOCreateCollectionItemRequest struct {
	Request json.RawMessage `json:"request" validate:"required"`
}

type DTOCreateEnvironmentRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Variables json.RawMessage `json:"variables"`
}

type DTOSuccessResponse struct {
	Success bool `json:"success"`
}

// Claims carried by HS256 access tokens. The subject is the caller's ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
