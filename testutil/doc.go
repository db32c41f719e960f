// Package testutil provides helpers shared by package tests: temporary
// media files, a routed fake vendor server that records requests, and a
// zero-wait sleep for poll loops.
//
//	srv := testutil.NewVendorServer(t)
//	srv.HandleJSON("POST /v1/files", 200, map[string]string{"id": "f1"})
//	opts := transcription.Options{BaseURL: srv.URL, Sleep: testutil.NoSleep}
package testutil
