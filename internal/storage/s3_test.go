package storage

import (
	"context"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>exports</Name>
  <Prefix>calendar-exports/1/</Prefix>
  <KeyCount>1</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>calendar-exports/1/a.ics</Key>
    <LastModified>2024-01-01T10:00:00.000Z</LastModified>
    <Size>42</Size>
  </Contents>
</ListBucketResult>`

type recordedRequest struct {
	method      string
	path        string
	query       string
	contentType string
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*S3Service, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		Credentials:                credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})
	return NewS3Service(client), &reqs
}

func TestS3Service_PutObject(t *testing.T) {
	svc, reqs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	})

	err := svc.PutObject(context.Background(), "exports", "calendar-exports/1/a.ics", "text/calendar", strings.NewReader("BEGIN:VCALENDAR"))
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/exports/calendar-exports/1/a.ics", got.path)
	assert.Equal(t, "text/calendar", got.contentType)
}

func TestS3Service_PutObjectValidation(t *testing.T) {
	svc, reqs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	require.Error(t, svc.PutObject(context.Background(), "", "k", "text/plain", strings.NewReader("x")))
	require.Error(t, svc.PutObject(context.Background(), "b", " ", "text/plain", strings.NewReader("x")))
	assert.Empty(t, *reqs)
}

func TestS3Service_ListObjects(t *testing.T) {
	svc, reqs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, listResponse)
	})

	objects, err := svc.ListObjects(context.Background(), "exports", "calendar-exports/1/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "calendar-exports/1/a.ics", objects[0].Key)
	assert.Equal(t, int64(42), objects[0].Size)
	require.NotNil(t, objects[0].LastModified)
	assert.True(t, objects[0].LastModified.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodGet, (*reqs)[0].method)
	assert.Contains(t, (*reqs)[0].query, "list-type=2")
	assert.Contains(t, (*reqs)[0].query, "prefix=calendar-exports%2F1%2F")
}

func TestS3Service_PresignGet(t *testing.T) {
	svc, reqs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	url, err := svc.PresignGet(context.Background(), "exports", "calendar-exports/1/a.ics", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/exports/calendar-exports/1/a.ics")
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Empty(t, *reqs)
}

func TestS3Service_DeletePrefixRequiresPrefix(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	require.Error(t, svc.DeletePrefix(context.Background(), "exports", "  "))
	require.Error(t, svc.DeletePrefix(context.Background(), "", "p/"))
}

const mixedListResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>exports</Name>
  <Prefix>calendar-exports/1/</Prefix>
  <KeyCount>3</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>calendar-exports/1/</Key>
    <LastModified>2024-01-01T09:00:00.000Z</LastModified>
    <Size>0</Size>
  </Contents>
  <Contents>
    <Key>calendar-exports/1/old.ics</Key>
    <LastModified>2024-01-01T10:00:00.000Z</LastModified>
    <Size>10</Size>
  </Contents>
  <Contents>
    <Key>calendar-exports/1/new.ics</Key>
    <LastModified>2024-02-01T10:00:00.000Z</LastModified>
    <Size>20</Size>
  </Contents>
</ListBucketResult>`

func TestS3Service_ListObjectsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, mixedListResponse)
	})

	objects, err := svc.ListObjects(context.Background(), "exports", "calendar-exports/1/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "calendar-exports/1/new.ics", objects[0].Key)
	assert.Equal(t, "calendar-exports/1/old.ics", objects[1].Key)
}

func TestS3Service_DeletePrefix(t *testing.T) {
	svc, reqs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, listResponse)
			return
		}
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></DeleteResult>`)
	})

	require.NoError(t, svc.DeletePrefix(context.Background(), "exports", "calendar-exports/1/"))
	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodGet, (*reqs)[0].method)
	assert.Equal(t, http.MethodPost, (*reqs)[1].method)
	assert.Contains(t, (*reqs)[1].query, "delete")
}

func TestS3Service_DeletePrefixReportsKeyErrors(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, listResponse)
			return
		}
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Error>
    <Key>calendar-exports/1/a.ics</Key>
    <Code>AccessDenied</Code>
    <Message>Access Denied</Message>
  </Error>
</DeleteResult>`)
	})

	err := svc.DeletePrefix(context.Background(), "exports", "calendar-exports/1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.Contains(t, err.Error(), "calendar-exports/1/a.ics")
}
