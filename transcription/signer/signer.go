// Package signer implements canonical-request HMAC-SHA256 request signing
// in the TC3 family used by Tencent Cloud APIs.
package signer

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/scribe/httpclient"
)

// Config parameterizes the signing scheme.
type Config struct {
	Algorithm   string
	KeyPrefix   string
	ScopeSuffix string
	Service     string
	SecretID    string
	SecretKey   string
	// SignedHeaders lists the lower-cased headers included in the
	// canonical request. Defaults to content-type and host.
	SignedHeaders []string
	// Now is the clock used by Auth. Defaults to time.Now.
	Now func() time.Time
}

// Signer signs requests. It holds no mutable state.
type Signer struct {
	cfg Config
}

// New creates a Signer from cfg.
func New(cfg Config) *Signer {
	if len(cfg.SignedHeaders) == 0 {
		cfg.SignedHeaders = []string{"content-type", "host"}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Signer{cfg: cfg}
}

// TC3 returns a signer for the Tencent Cloud TC3-HMAC-SHA256 scheme.
func TC3(service, secretID, secretKey string) *Signer {
	return TC3At(service, secretID, secretKey, nil)
}

// TC3At is TC3 with an explicit clock.
func TC3At(service, secretID, secretKey string, now func() time.Time) *Signer {
	return New(Config{
		Now:         now,
		Algorithm:   "TC3-HMAC-SHA256",
		KeyPrefix:   "TC3",
		ScopeSuffix: "tc3_request",
		Service:     service,
		SecretID:    secretID,
		SecretKey:   secretKey,
	})
}

// Request is the signable view of an HTTP request.
type Request struct {
	Method    string
	Path      string
	Query     string
	Headers   map[string]string
	Payload   []byte
	Timestamp time.Time
}

// Signature is the result of signing a Request.
type Signature struct {
	Authorization string
	Timestamp     string
	// CanonicalRequest and StringToSign are kept for debugging.
	CanonicalRequest string
	StringToSign     string
}

// Headers returns the headers to attach to the request.
func (s Signature) Headers() map[string]string {
	return map[string]string{
		"Authorization":  s.Authorization,
		"X-TC-Timestamp": s.Timestamp,
	}
}

// Sign computes the signature for r. Identical inputs produce identical
// output.
func (s *Signer) Sign(r Request) Signature {
	ts := r.Timestamp.UTC()
	date := ts.Format("2006-01-02")
	unix := strconv.FormatInt(ts.Unix(), 10)

	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	signed := make([]string, 0, len(s.cfg.SignedHeaders))
	for _, h := range s.cfg.SignedHeaders {
		signed = append(signed, strings.ToLower(h))
	}
	sort.Strings(signed)

	var canonicalHeaders strings.Builder
	for _, h := range signed {
		canonicalHeaders.WriteString(h + ":" + strings.ToLower(headers[h]) + "\n")
	}
	signedHeaders := strings.Join(signed, ";")

	path := r.Path
	if path == "" {
		path = "/"
	}
	canonical := strings.Join([]string{
		r.Method,
		path,
		r.Query,
		canonicalHeaders.String(),
		signedHeaders,
		sha256Hex(r.Payload),
	}, "\n")

	scope := date + "/" + s.cfg.Service + "/" + s.cfg.ScopeSuffix
	stringToSign := strings.Join([]string{
		s.cfg.Algorithm,
		unix,
		scope,
		sha256Hex([]byte(canonical)),
	}, "\n")

	key := hmacSHA256([]byte(s.cfg.KeyPrefix+s.cfg.SecretKey), date)
	key = hmacSHA256(key, s.cfg.Service)
	key = hmacSHA256(key, s.cfg.ScopeSuffix)
	signature := hex.EncodeToString(hmacSHA256(key, stringToSign))

	return Signature{
		Authorization: fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			s.cfg.Algorithm, s.cfg.SecretID, scope, signedHeaders, signature),
		Timestamp:        unix,
		CanonicalRequest: canonical,
		StringToSign:     stringToSign,
	}
}

// Auth returns an httpclient auth config that signs each outgoing request
// at send time. A body that cannot be read for hashing fails the request.
func (s *Signer) Auth() *httpclient.AuthConfig {
	return httpclient.CustomAuth(func(req *http.Request) error {
		payload, err := readPayload(req)
		if err != nil {
			return fmt.Errorf("signer: read payload: %w", err)
		}
		host := req.Host
		if host == "" {
			host = req.URL.Host
		}
		sig := s.Sign(Request{
			Method:    req.Method,
			Path:      req.URL.Path,
			Query:     req.URL.RawQuery,
			Headers:   map[string]string{"content-type": req.Header.Get("Content-Type"), "host": host},
			Payload:   payload,
			Timestamp: s.cfg.Now(),
		})
		for k, v := range sig.Headers() {
			req.Header.Set(k, v)
		}
		return nil
	})
}

// readPayload returns the request body without consuming it.
func readPayload(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody == nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		return data, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	return io.ReadAll(body)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
