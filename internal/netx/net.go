// Package netx holds small HTTP helpers shared by the client and the relays.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// StatusError is returned when the remote side answers with a non-2xx code.
type StatusError struct {
	Code   int
	Status string
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, string(e.Body))
}

// UploadMultipart posts data as the file part named field (with the given
// file name) plus any extra form fields, and returns the response body.
//
// Non-2xx responses are reported as *StatusError carrying the body.
func UploadMultipart(ctx context.Context, client *http.Client, url string, header http.Header,
	field, fileName string, data []byte, fields map[string]string) ([]byte, error) {

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}

	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: body}
	}
	return body, nil
}
