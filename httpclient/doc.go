// Package httpclient provides the outbound HTTP client used by every vendor
// adapter.
//
// Each client carries its own timeout and an explicit proxy. The transport
// never consults HTTP_PROXY or related environment variables, so a vendor
// call goes through a proxy only when Config.ProxyURL says so.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:     "deepgram",
//	    BaseURL:  "https://api.deepgram.com",
//	    Timeout:  5 * time.Minute,
//	    ProxyURL: cfg.ProxyURL,
//	    Auth:     httpclient.SchemeAuth("Token", apiKey),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/v1/listen",
//	    Body:   file,
//	})
//
// Non-2xx responses come back as *Error together with the Response, so
// callers can inspect the vendor's error body.
package httpclient
