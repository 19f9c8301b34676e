package models

import "encoding/json"

// ProxyStatusSuccess is the envelope status proxy endpoints use for success.
const ProxyStatusSuccess = "success"

// ProxyEnvelope is the part of a proxy response the portal interprets.
type ProxyEnvelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Timestamp Timestamp `json:"timestamp"`
}

// ProxyResult is a successful proxy response: the envelope plus the full body.
type ProxyResult struct {
	ProxyEnvelope
	Raw    json.RawMessage
	Pretty string
}

// CustomRequest is the POST /api/external/custom body.
type CustomRequest struct {
	URL    string          `json:"url"`
	Method string          `json:"method"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// Health is the GET /health payload.
type Health struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp Timestamp `json:"timestamp"`
}
