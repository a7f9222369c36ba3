package storage

import (
	"alcyxob/workout-tracker/internal/config"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func testArchive(t *testing.T, endpoint string) Archive {
	t.Helper()
	log, _ := test.NewNullLogger()
	archive, err := NewS3Archive(context.Background(), config.S3Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BucketName:      "workouts",
	}, log)
	require.NoError(t, err)
	return archive
}

func TestNewS3ArchiveRequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), config.S3Config{Region: "us-east-1"}, logrus.New())
	assert.Error(t, err)
}

func TestPutAndDeleteObject(t *testing.T) {
	srv, requests := newFakeS3(t)
	archive := testArchive(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, archive.PutObject(ctx, "exports/u1/a.json", "application/json", []byte(`{"ok":true}`)))
	require.NoError(t, archive.DeleteObject(ctx, "exports/u1/a.json"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/workouts/exports/u1/a.json", got[0].path)
	assert.Equal(t, "application/json", got[0].contentType)
	assert.Contains(t, got[0].body, `{"ok":true}`)
	assert.Equal(t, http.MethodDelete, got[1].method)
}

func TestGeneratePresignedDownloadURL(t *testing.T) {
	srv, requests := newFakeS3(t)
	archive := testArchive(t, srv.URL)

	url, err := archive.GeneratePresignedDownloadURL(context.Background(), "exports/u1/a.json", time.Hour)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, srv.URL+"/workouts/exports/u1/a.json?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=3600")
	assert.Empty(t, requests(), "presigning must not hit the endpoint")
}
