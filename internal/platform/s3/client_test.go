package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/util/retry"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "us-west-2",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{
		s3:     client,
		region: "us-west-2",
		retry:  []retry.Option{retry.WithInitialDelay(time.Millisecond), retry.WithMaxRetries(2)},
	}
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func listResult(truncated bool, next string, keys ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>`)
	fmt.Fprintf(&sb, "<KeyCount>%d</KeyCount><IsTruncated>%t</IsTruncated>", len(keys), truncated)
	if next != "" {
		fmt.Fprintf(&sb, "<NextContinuationToken>%s</NextContinuationToken>", next)
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "<Contents><Key>%s</Key><Size>1</Size></Contents>", k)
	}
	sb.WriteString("</ListBucketResult>")
	return sb.String()
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"default chain", Options{Region: "us-west-2"}},
		{"static credentials", Options{Region: "us-west-2", AccessKey: "a", SecretKey: "b"}},
		{"endpoint override", Options{Region: "us-east-1", Endpoint: "http://localhost:4566", AccessKey: "a", SecretKey: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(context.Background(), tt.opts)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.Equal(t, tt.opts.Region, client.region)
		})
	}
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"jobs", "pyspark/entrypoint.py", "jobs/entrypoint.py"},
		{"jobs/", "app.jar", "jobs/app.jar"},
		{"", "app.py", "app.py"},
		{"/abs", "app.py", "abs/app.py"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.name))
	}
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr string
	}{
		{"exists", 200, "", true, ""},
		{"not found", 404, `<Error><Code>NotFound</Code></Error>`, false, ""},
		{"access denied", 403, `<Error><Code>AccessDenied</Code></Error>`, false, "failed to check bucket test-bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				xmlResponse(w, tt.status, tt.body)
			}))

			exists, err := client.BucketExists(context.Background(), "test-bucket")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		body        []byte
		contentType string
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(200)
	}))

	require.NoError(t, client.PutObject(context.Background(), "test-bucket", "jobs/app.py", []byte("print(1)"), "text/x-python"))

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, string(body), "print(1)")
	assert.Equal(t, "text/x-python", contentType)
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<Error><Code>InternalError</Code><Message>Internal Error</Message></Error>`)
	}))

	err := client.PutObject(context.Background(), "test-bucket", "test-key", []byte("data"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object test-key in bucket test-bucket")
}

func TestListObjects_Paginates(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		tokens []string
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		token := r.URL.Query().Get("continuation-token")
		tokens = append(tokens, token)
		mu.Unlock()

		assert.Equal(t, "jobs/", r.URL.Query().Get("prefix"))
		if token == "" {
			xmlResponse(w, 200, listResult(true, "page2", "jobs/a.py", "jobs/b.py"))
			return
		}
		xmlResponse(w, 200, listResult(false, "", "jobs/c.py"))
	}))

	keys, err := client.ListObjects(context.Background(), "test-bucket", "jobs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs/a.py", "jobs/b.py", "jobs/c.py"}, keys)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "page2"}, tokens)
}

func TestListObjects_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 404, `<Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`)
	}))

	_, err := client.ListObjects(context.Background(), "nonexistent-bucket", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list objects in bucket nonexistent-bucket")
}

func TestStage(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		puts []string
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(200)
		case http.MethodPut:
			mu.Lock()
			puts = append(puts, r.URL.Path)
			mu.Unlock()
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(200)
		default:
			w.WriteHeader(405)
		}
	}))

	keys, err := client.Stage(context.Background(), "test-bucket", "jobs", []Artifact{
		{Name: "demo/entrypoint.py", Data: []byte("print(1)")},
		{Name: "deps.zip", Data: []byte("PK")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs/entrypoint.py", "jobs/deps.zip"}, keys)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"/test-bucket/jobs/entrypoint.py", "/test-bucket/jobs/deps.zip"}, puts)
}

func TestStage_RejectedUploadNotRetried(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		puts int
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(200)
			return
		}
		mu.Lock()
		puts++
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		xmlResponse(w, 403, `<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	}))

	_, err := client.Stage(context.Background(), "test-bucket", "jobs", []Artifact{{Name: "entrypoint.py", Data: []byte("x")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobs/entrypoint.py")
	assert.True(t, retry.IsFatal(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, puts)
}

func TestIsClientFault(t *testing.T) {
	t.Parallel()

	assert.False(t, isClientFault(nil))
	assert.False(t, isClientFault(fmt.Errorf("plain")))
}

func TestStage_MissingBucket(t *testing.T) {
	t.Parallel()

	var puts int
	var mu sync.Mutex
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			puts++
			mu.Unlock()
		}
		xmlResponse(w, 404, `<Error><Code>NotFound</Code></Error>`)
	}))

	_, err := client.Stage(context.Background(), "missing", "jobs", []Artifact{{Name: "a.py"}})
	assert.ErrorIs(t, err, ErrBucketNotFound)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, puts)
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"wrapped NoSuchBucket", fmt.Errorf("outer: %w", &s3types.NoSuchBucket{}), true},
		{"wrapped NotFound", fmt.Errorf("outer: %w", &s3types.NotFound{}), true},
		{"wrapped generic error", fmt.Errorf("outer: %w", fmt.Errorf("inner error")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isNotFoundError(tt.err))
		})
	}
}
