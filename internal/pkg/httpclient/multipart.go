package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FormFile is a file part of a multipart payload
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// MultipartBody is a fully buffered multipart/form-data payload
type MultipartBody struct {
	buf         bytes.Buffer
	contentType string
}

// NewMultipartBody encodes fields (in key order) followed by files
func NewMultipartBody(fields map[string]string, files ...FormFile) (*MultipartBody, error) {
	body := &MultipartBody{}
	w := multipart.NewWriter(&body.buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy form file %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	body.contentType = w.FormDataContentType()
	return body, nil
}

// ContentType returns the multipart content type including the boundary
func (b *MultipartBody) ContentType() string {
	return b.contentType
}

func (b *MultipartBody) reader() io.Reader {
	return bytes.NewReader(b.buf.Bytes())
}
