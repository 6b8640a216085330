package etl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"faq-chatbot/internal/config"
	"faq-chatbot/internal/llm"
	"faq-chatbot/internal/models"
)

// ChunkStore is the slice of the vector store the ETL writes to.
type ChunkStore interface {
	AddChunks(ctx context.Context, chunks []models.Chunk) error
	AddImageDocuments(ctx context.Context, docs []models.ImageDocument) error
}

// Pipeline ingests FAQ spreadsheets and images into the vector store.
// Embedding happens inside the store; the LLM client is only used for image
// descriptions.
type Pipeline struct {
	cfg    *config.Config
	store  ChunkStore
	excel  ExcelReader
	images *ImageProcessor
}

func NewPipeline(cfg *config.Config, client llm.Client, store ChunkStore) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		images: NewImageProcessor(client),
	}
}

// IngestAll processes every .xlsx file in the FAQ directory and every image
// in the image directory. Per-file errors are recorded in the result, not
// returned.
func (p *Pipeline) IngestAll(ctx context.Context) models.IngestResult {
	totalProcessed := 0
	totalErrors := 0
	var detailsParts []string

	xlsxFiles, _ := filepath.Glob(filepath.Join(p.cfg.Data.FAQDir, "*.xlsx"))
	if len(xlsxFiles) == 0 {
		msg := fmt.Sprintf("対象Excelファイルが見つかりません: %s", p.cfg.Data.FAQDir)
		log.Warn().Str("dir", p.cfg.Data.FAQDir).Msg("no excel files to ingest")
		detailsParts = append(detailsParts, msg)
	} else {
		for _, path := range xlsxFiles {
			result := p.IngestExcel(ctx, path)
			totalProcessed += result.TotalProcessed
			totalErrors += result.ErrorCount
			detailsParts = append(detailsParts, result.Details)
		}
	}

	imgResult := p.IngestImages(ctx, p.cfg.Data.ImageDir)
	totalProcessed += imgResult.TotalProcessed
	totalErrors += imgResult.ErrorCount
	detailsParts = append(detailsParts, imgResult.Details)

	log.Info().Int("processed", totalProcessed).Int("errors", totalErrors).Msg("ingest finished")

	return models.IngestResult{
		TotalProcessed: totalProcessed,
		ErrorCount:     totalErrors,
		Details:        strings.Join(detailsParts, "; "),
	}
}

// IngestExcel ingests one FAQ workbook: read all rows, keep published ones,
// chunk, and store. Embeddings are generated by the store.
func (p *Pipeline) IngestExcel(ctx context.Context, filePath string) models.IngestResult {
	name := filepath.Base(filePath)

	entries, err := p.excel.ReadFAQExcel(filePath)
	if err != nil {
		msg := fmt.Sprintf("%s: 取り込みエラー: %v", name, err)
		log.Error().Err(err).Str("file", name).Msg("excel ingest failed")
		return models.IngestResult{TotalProcessed: 0, ErrorCount: 1, Details: msg}
	}

	published := p.excel.FilterPublished(entries)
	chunks := make([]models.Chunk, 0, len(published))
	for _, entry := range published {
		chunk, err := p.excel.EntryToChunk(entry)
		if err != nil {
			msg := fmt.Sprintf("%s: 取り込みエラー: %v", name, err)
			log.Error().Err(err).Str("file", name).Msg("chunk conversion failed")
			return models.IngestResult{TotalProcessed: 0, ErrorCount: 1, Details: msg}
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) == 0 {
		msg := fmt.Sprintf("%s: 公開エントリなし", name)
		log.Info().Str("file", name).Msg("no published entries")
		return models.IngestResult{TotalProcessed: 0, ErrorCount: 0, Details: msg}
	}

	if err := p.store.AddChunks(ctx, chunks); err != nil {
		msg := fmt.Sprintf("%s: 取り込みエラー: %v", name, err)
		log.Error().Err(err).Str("file", name).Msg("store write failed")
		return models.IngestResult{TotalProcessed: 0, ErrorCount: 1, Details: msg}
	}

	log.Info().Str("file", name).Int("chunks", len(chunks)).Msg("excel ingested")
	return models.IngestResult{
		TotalProcessed: len(chunks),
		ErrorCount:     0,
		Details:        fmt.Sprintf("%s: %d件のチャンクを取り込み", name, len(chunks)),
	}
}

// IngestImages ingests every supported image in the directory. Failures on
// individual images are counted and skipped.
func (p *Pipeline) IngestImages(ctx context.Context, directory string) models.IngestResult {
	imagePaths := p.images.ListImages(directory)
	if len(imagePaths) == 0 {
		msg := fmt.Sprintf("対象画像ファイルが見つかりません: %s", directory)
		log.Info().Str("dir", directory).Msg("no images to ingest")
		return models.IngestResult{TotalProcessed: 0, ErrorCount: 0, Details: msg}
	}

	processed := 0
	errors := 0
	for _, imagePath := range imagePaths {
		doc, err := p.images.ProcessImage(ctx, imagePath)
		if err != nil {
			errors++
			log.Error().Err(err).Str("image", filepath.Base(imagePath)).Msg("image processing failed")
			continue
		}
		if err := p.store.AddImageDocuments(ctx, []models.ImageDocument{doc}); err != nil {
			errors++
			log.Error().Err(err).Str("image", filepath.Base(imagePath)).Msg("store write failed")
			continue
		}
		processed++
		log.Info().Str("image", filepath.Base(imagePath)).Msg("image ingested")
	}

	return models.IngestResult{
		TotalProcessed: processed,
		ErrorCount:     errors,
		Details:        fmt.Sprintf("画像: %d件取り込み, %d件エラー", processed, errors),
	}
}
