package netx

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MultipartFile builds a multipart/form-data body holding a single file part
// named field. It returns the body and the matching Content-Type value.
func MultipartFile(field, filename string, r io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// IsSuccess reports whether resp carries a 2xx status.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
