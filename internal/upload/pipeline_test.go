package upload_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/upload"
)

// fakeIngestor records upload calls and returns scripted results.
type fakeIngestor struct {
	calls []string
	fail  map[string]error
}

func (f *fakeIngestor) Upload(ctx context.Context, filename string, file io.Reader, description string) (*client.UploadResult, error) {
	f.calls = append(f.calls, filename)
	if err, ok := f.fail[filename]; ok {
		return nil, err
	}
	return &client.UploadResult{Success: true, Filename: filename, ChunksAdded: 5}, nil
}

type fakeSink struct {
	records []models.UploadedFileRecord
}

func (f *fakeSink) RecordUpload(rec models.UploadedFileRecord) {
	f.records = append(f.records, rec)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{name: "pdf allowed", file: "notes.pdf", size: 1024},
		{name: "txt allowed", file: "notes.txt", size: 1024},
		{name: "md allowed", file: "notes.md", size: 1024},
		{name: "uppercase extension allowed", file: "NOTES.PDF", size: 1024},
		{name: "image rejected", file: "diagram.png", size: 1024, wantErr: true},
		{name: "no extension rejected", file: "notes", size: 1024, wantErr: true},
		{name: "at size limit", file: "big.pdf", size: upload.MaxFileSize},
		{name: "over size limit", file: "huge.pdf", size: upload.MaxFileSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := upload.Validate(tt.file, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessSuccess(t *testing.T) {
	ingestor := &fakeIngestor{}
	sink := &fakeSink{}
	p := upload.New(ingestor, sink, nil, nil, nil)

	var seen []models.UploadStatus
	p.OnTransition = func(item models.UploadItem) {
		seen = append(seen, item.Status)
	}

	path := writeTempFile(t, "notes.txt", "lecture notes")
	items := p.Process(context.Background(), []string{path}, "week 3")

	require.Len(t, items, 1)
	assert.Equal(t, models.UploadSuccess, items[0].Status)
	assert.NotEmpty(t, items[0].ID)

	assert.Equal(t, []models.UploadStatus{
		models.UploadPending,
		models.UploadUploading,
		models.UploadSuccess,
	}, seen)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "notes.txt", sink.records[0].Name)
	assert.Equal(t, 5, sink.records[0].ChunkCount)
}

func TestProcessRejectsDisallowedTypeWithoutCall(t *testing.T) {
	ingestor := &fakeIngestor{}
	p := upload.New(ingestor, &fakeSink{}, nil, nil, nil)

	path := writeTempFile(t, "image.png", "not a document")
	items := p.Process(context.Background(), []string{path}, "")

	assert.Empty(t, items, "rejected file must not enter the pipeline")
	assert.Empty(t, ingestor.calls, "rejected file must not hit the network")
}

func TestProcessMissingFile(t *testing.T) {
	ingestor := &fakeIngestor{}
	p := upload.New(ingestor, &fakeSink{}, nil, nil, nil)

	items := p.Process(context.Background(), []string{"/no/such/file.pdf"}, "")
	assert.Empty(t, items)
	assert.Empty(t, ingestor.calls)
}

func TestProcessSequentialOrder(t *testing.T) {
	ingestor := &fakeIngestor{}
	p := upload.New(ingestor, &fakeSink{}, nil, nil, nil)

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%d.md", i))
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
		paths = append(paths, path)
	}

	items := p.Process(context.Background(), paths, "")

	require.Len(t, items, 3)
	assert.Equal(t, []string{"doc0.md", "doc1.md", "doc2.md"}, ingestor.calls,
		"uploads must run in submission order")
}

func TestProcessFailureDoesNotStopRemaining(t *testing.T) {
	ingestor := &fakeIngestor{fail: map[string]error{"bad.txt": fmt.Errorf("server error")}}
	sink := &fakeSink{}
	p := upload.New(ingestor, sink, nil, nil, nil)

	bad := writeTempFile(t, "bad.txt", strings.Repeat("x", 10))
	good := writeTempFile(t, "good.txt", "fine")

	items := p.Process(context.Background(), []string{bad, good}, "")

	require.Len(t, items, 2)
	assert.Equal(t, models.UploadError, items[0].Status)
	assert.Error(t, items[0].Err)
	assert.Equal(t, models.UploadSuccess, items[1].Status)

	// Only the successful file produces a record.
	require.Len(t, sink.records, 1)
	assert.Equal(t, "good.txt", sink.records[0].Name)
}
