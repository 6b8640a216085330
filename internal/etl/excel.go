// Package etl ingests FAQ spreadsheets and images into the vector store.
package etl

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"faq-chatbot/internal/helper"
	"faq-chatbot/internal/models"
)

// Expected FAQ sheet columns (0-based): No., ステータス, 親カテゴリ,
// 子カテゴリ, タイトル, 本文.
const (
	colNo = iota
	colStatus
	colParentCategory
	colChildCategory
	colTitle
	colBody
)

// publishStatus marks rows that are live; everything else is skipped.
const publishStatus = "公開"

// ExcelReader loads FAQ entries from .xlsx workbooks.
type ExcelReader struct{}

// ReadFAQExcel reads every sheet of the workbook and returns all rows as
// FAQEntry values, regardless of status. Rows with an empty No. cell are
// skipped.
func (ExcelReader) ReadFAQExcel(filePath string) ([]models.FAQEntry, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file %s: %w", filePath, err)
	}
	defer f.Close()

	var entries []models.FAQEntry
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}

		// Row 1 is the header; data rows are numbered from 2 like in Excel.
		for i := 1; i < len(rows); i++ {
			rowNumber := i + 1
			row := rows[i]
			if cell(row, colNo) == "" {
				continue
			}

			no, err := strconv.Atoi(cell(row, colNo))
			if err != nil {
				no = rowNumber - 1
			}

			entries = append(entries, models.FAQEntry{
				No:             no,
				Status:         cell(row, colStatus),
				ParentCategory: cell(row, colParentCategory),
				ChildCategory:  cell(row, colChildCategory),
				Title:          cell(row, colTitle),
				Body:           cell(row, colBody),
				SourceFile:     filepath.Base(filePath),
				SheetName:      sheetName,
				RowNumber:      rowNumber,
			})
		}
	}
	return entries, nil
}

// FilterPublished keeps only entries whose status is 公開.
func (ExcelReader) FilterPublished(entries []models.FAQEntry) []models.FAQEntry {
	var published []models.FAQEntry
	for _, e := range entries {
		if e.Status == publishStatus {
			published = append(published, e)
		}
	}
	return published
}

// EntryToChunk turns a FAQ entry into an indexable chunk: title + newline +
// body, with a fresh UUID id.
func (ExcelReader) EntryToChunk(entry models.FAQEntry) (models.Chunk, error) {
	chunkID, err := helper.GenerateUUID()
	if err != nil {
		return models.Chunk{}, err
	}
	return models.Chunk{
		ChunkID: chunkID,
		Text:    entry.Title + "\n" + entry.Body,
		Metadata: models.ChunkMetadata{
			SourceFile:     entry.SourceFile,
			SheetName:      entry.SheetName,
			RowNumber:      entry.RowNumber,
			ParentCategory: entry.ParentCategory,
			ChildCategory:  entry.ChildCategory,
			Title:          entry.Title,
			ContentType:    models.ContentTypeText,
		},
	}, nil
}

// GetRows trims trailing empty cells, so guard every column access.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
