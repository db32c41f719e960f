package httpclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// MultipartBody represents a multipart/form-data request body.
// Pass this as the Body field of a Request to automatically construct
// multipart encoding with the correct Content-Type header.
type MultipartBody struct {
	// Fields are simple key-value form fields, written in key order.
	Fields map[string]string
	// Files are file upload fields, written after the fields.
	Files []FileField
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "file", "audio").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type. If empty, uses application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader streams the content instead of buffering it.
	Reader io.Reader
	// Size is the byte length of Reader. When every streamed file has a
	// size the request is sent with an exact Content-Length.
	Size int64
}

func (m *MultipartBody) streaming() bool {
	for _, f := range m.Files {
		if f.Data == nil && f.Reader != nil {
			return true
		}
	}
	return false
}

// encode returns the body reader, content type and length (-1 if unknown).
// Bodies with streamed files are produced through a pipe so large media
// is never held in memory.
func (m *MultipartBody) encode() (io.Reader, string, int64, error) {
	if !m.streaming() {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := m.write(w, true); err != nil {
			return nil, "", -1, err
		}
		return &buf, w.FormDataContentType(), int64(buf.Len()), nil
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	length := m.length(w.Boundary())
	go func() {
		_ = pw.CloseWithError(m.write(w, true))
	}()
	return pr, w.FormDataContentType(), length, nil
}

// length computes the encoded size from the part headers plus the declared
// file sizes. It returns -1 when a streamed file has no size.
func (m *MultipartBody) length(boundary string) int64 {
	var total int64
	for _, f := range m.Files {
		switch {
		case f.Data != nil:
			total += int64(len(f.Data))
		case f.Reader != nil && f.Size > 0:
			total += f.Size
		case f.Reader != nil:
			return -1
		}
	}
	var counter countingWriter
	w := multipart.NewWriter(&counter)
	if err := w.SetBoundary(boundary); err != nil {
		return -1
	}
	if err := m.write(w, false); err != nil {
		return -1
	}
	return total + counter.n
}

func (m *MultipartBody) write(w *multipart.Writer, withData bool) error {
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return err
		}
	}

	for _, f := range m.Files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if !withData {
			continue
		}
		if f.Data != nil {
			if _, err := part.Write(f.Data); err != nil {
				return err
			}
		} else if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return err
			}
		}
	}
	return w.Close()
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
