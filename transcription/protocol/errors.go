package protocol

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/util"
)

const maxDetailBytes = 500

// FromHTTP maps an httpclient failure onto a vendor error. 401 and 403
// become VENDOR_AUTH_ERROR, timeouts TIMEOUT, everything else
// VENDOR_PROTOCOL_ERROR. AppErrors pass through unchanged.
func FromHTTP(vendor string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	he, ok := httpclient.AsError(err)
	if !ok {
		return errors.VendorProtocol(vendor, err.Error()).WithCause(err)
	}
	switch {
	case he.Code == httpclient.ErrCodeTimeout:
		return errors.Timeout(vendor + " request").WithCause(err)
	case he.Code == httpclient.ErrCodeAuth:
		return errors.VendorAuth(vendor, Detail(he.Body, he.Message)).WithCause(err).
			WithDetail("status", he.StatusCode)
	case he.StatusCode > 0:
		return errors.VendorProtocol(vendor, Detail(he.Body, he.Message)).WithCause(err).
			WithDetail("status", he.StatusCode)
	default:
		return errors.VendorProtocol(vendor, he.Message).WithCause(err)
	}
}

// Detail extracts a human-readable message from a vendor error body: the
// JSON message field when the body parses, otherwise the text truncated to
// 500 bytes. fallback is used for an empty body.
func Detail(body []byte, fallback string) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err == nil {
		if msg := messageField(doc); msg != "" {
			return util.TruncateBytes(msg, maxDetailBytes)
		}
	}
	return util.TruncateBytes(text, maxDetailBytes)
}

var messageKeys = []string{"message", "msg", "error_message", "err_msg", "detail", "error", "Error", "Message"}

func messageField(doc map[string]any) string {
	for _, k := range messageKeys {
		switch v := doc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg := messageField(v); msg != "" {
				return msg
			}
		}
	}
	if resp, ok := doc["Response"].(map[string]any); ok {
		return messageField(resp)
	}
	return ""
}

// Malformed reports a response body that could not be decoded.
func Malformed(vendor string, err error) error {
	return errors.VendorProtocol(vendor, "malformed response: "+err.Error()).WithCause(err)
}
