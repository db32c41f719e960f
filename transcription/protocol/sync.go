package protocol

import (
	"context"
	"encoding/json"

	"github.com/kbukum/scribe/httpclient"
)

// Do sends req and maps any failure to a vendor error.
func Do(ctx context.Context, client *httpclient.Client, vendor string, req httpclient.Request) (*httpclient.Response, error) {
	resp, err := client.Do(ctx, req)
	if err != nil {
		return resp, FromHTTP(vendor, err)
	}
	return resp, nil
}

// DoJSON sends req once and decodes the 2xx JSON response into T.
func DoJSON[T any](ctx context.Context, client *httpclient.Client, vendor string, req httpclient.Request) (*T, error) {
	resp, err := Do(ctx, client, vendor, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](vendor, resp.Body)
}

// Decode unmarshals a vendor JSON body.
func Decode[T any](vendor string, body []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, Malformed(vendor, err)
	}
	return &out, nil
}
