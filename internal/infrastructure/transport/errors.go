package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

// Normalize turns a failed exchange into the single error shape used above
// the transport. Message priority: body "message", body "error", the
// transport-level message, then a generic fallback.
func Normalize(resp *http.Response, body []byte, err error) *domain.APIError {
	if resp == nil {
		msg := transportMessage(err)
		if msg == "" {
			msg = domain.NoResponseMessage
		}
		return &domain.APIError{Message: msg, Kind: domain.ErrNetworkUnavailable}
	}

	msg := bodyMessage(body)
	if msg == "" && err != nil {
		msg = transportMessage(err)
	}
	if msg == "" && resp.StatusCode >= http.StatusBadRequest {
		msg = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}
	if msg == "" {
		msg = domain.DefaultErrorMessage
	}

	return &domain.APIError{
		Message:  msg,
		Kind:     classify(resp),
		Status:   resp.StatusCode,
		Response: resp,
		RawBody:  body,
	}
}

// classify maps the status to a failure kind. A 401 to a request that
// carried no credential is a rejected login, not an expired session.
func classify(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized && resp.Request != nil &&
		resp.Request.Header.Get(headerAuthorization) == "" {
		return domain.ErrValidationRejected
	}
	return domain.KindForStatus(resp.StatusCode)
}

func bodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var fields map[string]any
	if json.Unmarshal(body, &fields) != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func transportMessage(err error) string {
	if err == nil {
		return ""
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
