package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appcfg "github.com/fdg312/meal-planner/internal/config"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func readyS3() appcfg.S3Config {
	return appcfg.S3Config{
		Endpoint:        "https://storage.example.com",
		Region:          "eu-central-1",
		Bucket:          "exports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicBaseURL:   "https://storage.example.com/exports",
	}
}

func TestNewExportStoreLocalForced(t *testing.T) {
	logger, logs := observedLogger()

	store, mode, err := NewExportStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeLocal}, logger)
	require.NoError(t, err)
	assert.Equal(t, appcfg.BlobModeLocal, mode)
	assert.Nil(t, store)

	entries := logs.FilterMessage("blob store selected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "forced", entries[0].ContextMap()["reason"])
}

func TestNewExportStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	logger, logs := observedLogger()

	store, mode, err := NewExportStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeAuto}, logger)
	require.NoError(t, err)
	assert.Equal(t, appcfg.BlobModeLocal, mode)
	assert.Nil(t, store)

	assert.Equal(t, 1, logs.FilterField(zap.String("code", "s3_not_configured")).Len())
}

func TestNewExportStoreAutoPartialS3Warns(t *testing.T) {
	logger, logs := observedLogger()

	cfg := appcfg.BlobConfig{Mode: appcfg.BlobModeAuto, S3: appcfg.S3Config{Endpoint: "https://storage.example.com"}}
	store, mode, err := NewExportStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, appcfg.BlobModeLocal, mode)
	assert.Nil(t, store)

	partial := logs.FilterField(zap.String("code", "s3_partial_config")).All()
	require.Len(t, partial, 1)
	assert.Equal(t, zap.WarnLevel, partial[0].Level)
}

func TestNewExportStoreExportsModeOverridesBlobMode(t *testing.T) {
	cfg := appcfg.BlobConfig{
		Mode:           appcfg.BlobModeS3,
		ExportsMode:    appcfg.BlobModeLocal,
		ExportsModeSet: true,
	}

	store, mode, err := NewExportStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, appcfg.BlobModeLocal, mode)
	assert.Nil(t, store)
}

func TestNewExportStoreS3ForcedRequiresConfig(t *testing.T) {
	_, _, err := NewExportStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeS3}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestNewExportStoreS3Ready(t *testing.T) {
	store, mode, err := NewExportStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeS3, S3: readyS3()}, nil)
	require.NoError(t, err)
	assert.Equal(t, appcfg.BlobModeS3, mode)
	assert.NotNil(t, store)
}

func TestNewExportStoreUnknownMode(t *testing.T) {
	_, _, err := NewExportStore(context.Background(), appcfg.BlobConfig{Mode: "ftp"}, nil)
	assert.Error(t, err)
}

func TestNewS3StoreRequiresFields(t *testing.T) {
	_, err := NewS3Store(context.Background(), "", "", "bucket", "key", "secret")
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestS3Store_PutSendsDownloadMetadata(t *testing.T) {
	type received struct {
		method, path, contentType, disposition string
		body                                   []byte
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			disposition: r.Header.Get("Content-Disposition"),
			body:        body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), srv.URL, "", "exports", "key", "secret")
	require.NoError(t, err)

	n, err := store.Put(context.Background(), Object{
		Key:         "exports/alice/list.csv",
		ContentType: "text/csv",
		Filename:    "shopping_2026-03-02_2026-03-08.csv",
		Data:        []byte("section,item\nProduce,Garlic\n"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 28, n)

	r := <-got
	assert.Equal(t, http.MethodPut, r.method)
	assert.Equal(t, "/exports/exports/alice/list.csv", r.path)
	assert.Equal(t, "text/csv", r.contentType)
	assert.Equal(t, "attachment; filename=shopping_2026-03-02_2026-03-08.csv", r.disposition)
	assert.NotEmpty(t, r.body)
}

func TestS3Store_PresignDownload(t *testing.T) {
	store, err := NewS3Store(context.Background(), "https://storage.example.com", "eu-central-1", "exports", "key", "secret")
	require.NoError(t, err)

	raw, err := store.PresignDownload(context.Background(), "exports/alice/list.csv", "shopping_2026-03-02_2026-03-08.csv", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "storage.example.com", u.Host)
	assert.Equal(t, "/exports/exports/alice/list.csv", u.Path)
	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.Equal(t, "attachment; filename=shopping_2026-03-02_2026-03-08.csv", q.Get("response-content-disposition"))
}
