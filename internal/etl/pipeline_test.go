package etl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faq-chatbot/internal/config"
	"faq-chatbot/internal/llm"
	"faq-chatbot/internal/models"
)

type fakeChunkStore struct {
	chunks    []models.Chunk
	imageDocs []models.ImageDocument
	addErr    error
}

func (f *fakeChunkStore) AddChunks(_ context.Context, chunks []models.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeChunkStore) AddImageDocuments(_ context.Context, docs []models.ImageDocument) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.imageDocs = append(f.imageDocs, docs...)
	return nil
}

type fakeDescriber struct {
	description string
	failFor     string
}

func (f *fakeDescriber) ChatCompletion(_ context.Context, _ []llm.Message) (*llm.Response, error) {
	return &llm.Response{Content: "ok"}, nil
}

func (f *fakeDescriber) Embed(_ context.Context, _ string) ([]float32, error) { return nil, nil }

func (f *fakeDescriber) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, nil
}

func (f *fakeDescriber) DescribeImage(_ context.Context, imagePath string) (string, error) {
	if f.failFor != "" && strings.HasSuffix(imagePath, f.failFor) {
		return "", errors.New("multimodal api unavailable")
	}
	return f.description, nil
}

func newTestPipeline(t *testing.T, store ChunkStore, client llm.Client) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		Data: config.DataConfig{
			FAQDir:   t.TempDir(),
			ImageDir: t.TempDir(),
		},
	}
	return NewPipeline(cfg, client, store), cfg
}

func TestIngestExcel(t *testing.T) {
	store := &fakeChunkStore{}
	pipeline, cfg := newTestPipeline(t, store, &fakeDescriber{})

	path := writeFAQWorkbook(t, cfg.Data.FAQDir, [][]interface{}{
		{1, "公開", "ネットワーク", "VPN", "VPNに接続できない", "再起動してください"},
		{2, "下書き", "ネットワーク", "プロキシ", "非公開の行", "取り込まれない"},
		{3, "公開", "PC", "起動", "起動しない", "電源を確認してください"},
	})

	result := pipeline.IngestExcel(context.Background(), path)

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Contains(t, result.Details, "FAQ_IT.xlsx")
	assert.Contains(t, result.Details, "2件")

	require.Len(t, store.chunks, 2)
	assert.Equal(t, "VPNに接続できない\n再起動してください", store.chunks[0].Text)
}

func TestIngestExcelNoPublishedEntries(t *testing.T) {
	store := &fakeChunkStore{}
	pipeline, cfg := newTestPipeline(t, store, &fakeDescriber{})

	path := writeFAQWorkbook(t, cfg.Data.FAQDir, [][]interface{}{
		{1, "下書き", "", "", "非公開", "本文"},
	})

	result := pipeline.IngestExcel(context.Background(), path)

	assert.Equal(t, 0, result.TotalProcessed)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Contains(t, result.Details, "公開エントリなし")
	assert.Empty(t, store.chunks)
}

func TestIngestExcelMissingFile(t *testing.T) {
	store := &fakeChunkStore{}
	pipeline, cfg := newTestPipeline(t, store, &fakeDescriber{})

	result := pipeline.IngestExcel(context.Background(), filepath.Join(cfg.Data.FAQDir, "nope.xlsx"))

	assert.Equal(t, 0, result.TotalProcessed)
	assert.Equal(t, 1, result.ErrorCount)
}

func TestIngestImages(t *testing.T) {
	store := &fakeChunkStore{}
	client := &fakeDescriber{description: "ネットワーク構成図", failFor: "broken.png"}
	pipeline, cfg := newTestPipeline(t, store, client)

	for _, name := range []string{"diagram.png", "broken.png", "photo.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.ImageDir, name), []byte("data"), 0o644))
	}

	result := pipeline.IngestImages(context.Background(), cfg.Data.ImageDir)

	// notes.txt is ignored, broken.png fails, the other two succeed.
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.ErrorCount)

	require.Len(t, store.imageDocs, 2)
	for _, doc := range store.imageDocs {
		assert.Equal(t, "ネットワーク構成図", doc.Description)
		assert.Equal(t, models.ContentTypeImage, doc.Metadata.ContentType)
		assert.NotEmpty(t, doc.DocID)
		assert.NotEmpty(t, doc.Metadata.ImagePath)
	}
}

func TestIngestImagesEmptyDir(t *testing.T) {
	store := &fakeChunkStore{}
	pipeline, cfg := newTestPipeline(t, store, &fakeDescriber{})

	result := pipeline.IngestImages(context.Background(), cfg.Data.ImageDir)

	assert.Equal(t, 0, result.TotalProcessed)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Empty(t, store.imageDocs)
}

func TestIngestAll(t *testing.T) {
	store := &fakeChunkStore{}
	client := &fakeDescriber{description: "画像の説明"}
	pipeline, cfg := newTestPipeline(t, store, client)

	writeFAQWorkbook(t, cfg.Data.FAQDir, [][]interface{}{
		{1, "公開", "ネットワーク", "VPN", "タイトル", "本文"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.ImageDir, "a.png"), []byte("data"), 0o644))

	result := pipeline.IngestAll(context.Background())

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Len(t, store.chunks, 1)
	assert.Len(t, store.imageDocs, 1)
}

func TestIngestAllNothingToDo(t *testing.T) {
	store := &fakeChunkStore{}
	pipeline, _ := newTestPipeline(t, store, &fakeDescriber{})

	result := pipeline.IngestAll(context.Background())

	assert.Equal(t, 0, result.TotalProcessed)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Contains(t, result.Details, "対象Excelファイルが見つかりません")
}
