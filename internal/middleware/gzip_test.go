package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func gzipTestHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	w.Header().Set("Content-Type", contentType)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("received: " + string(body)))
}

func TestGzipMiddleware(t *testing.T) {
	type want struct {
		statusCode      int
		contentEncoding string
		bodyContains    string
	}

	tests := []struct {
		name        string
		requestBody string
		gzipBody    bool
		headers     map[string]string
		want        want
	}{
		{
			name:        "client accepts gzip",
			requestBody: `{"product_id":"p-1"}`,
			headers: map[string]string{
				"Accept-Encoding": "gzip",
				"Content-Type":    "application/json",
			},
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "gzip",
				bodyContains:    `received: {"product_id":"p-1"}`,
			},
		},
		{
			name:        "client does not accept gzip",
			requestBody: "plain request",
			headers: map[string]string{
				"Accept-Encoding": "",
			},
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "",
				bodyContains:    "received: plain request",
			},
		},
		{
			name:        "client sends gzip body",
			requestBody: `{"quantity":3}`,
			gzipBody:    true,
			headers: map[string]string{
				"Content-Encoding": "gzip",
				"Content-Type":     "application/json",
			},
			want: want{
				statusCode:   http.StatusOK,
				bodyContains: `received: {"quantity":3}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = strings.NewReader(tt.requestBody)
			if tt.gzipBody {
				var buf bytes.Buffer
				gz := gzip.NewWriter(&buf)
				if _, err := gz.Write([]byte(tt.requestBody)); err != nil {
					t.Fatalf("gzip write: %v", err)
				}
				if err := gz.Close(); err != nil {
					t.Fatalf("gzip close: %v", err)
				}
				body = &buf
			}

			r := httptest.NewRequest(http.MethodPost, "/", body)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			GzipMiddleware(http.HandlerFunc(gzipTestHandler)).ServeHTTP(w, r)

			res := w.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.want.statusCode {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want.statusCode)
			}
			if got := res.Header.Get("Content-Encoding"); got != tt.want.contentEncoding {
				t.Fatalf("content-encoding = %q, want %q", got, tt.want.contentEncoding)
			}

			var reader io.Reader = res.Body
			if tt.want.contentEncoding == "gzip" {
				gz, err := gzip.NewReader(res.Body)
				if err != nil {
					t.Fatalf("gzip reader: %v", err)
				}
				defer gz.Close()
				reader = gz
			}

			data, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if !strings.Contains(string(data), tt.want.bodyContains) {
				t.Fatalf("body = %q, want contains %q", string(data), tt.want.bodyContains)
			}
		})
	}
}
